package task_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/task"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/infrastructure/cache"
	"github.com/jhoicas/punchlist-api/internal/testutil"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

func str(s string) *string { return &s }

func date(s string) *time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return &d
}

func technician() *access.Actor {
	return &access.Actor{UserID: 3, Role: entity.RoleTechnician, Permissions: map[string]bool{
		entity.PermViewTasks: true, entity.PermManageTasks: true,
	}}
}

func viewer() *access.Actor {
	return &access.Actor{UserID: 4, Role: entity.RoleViewer, Permissions: map[string]bool{entity.PermViewTasks: true}}
}

type fixture struct {
	tasks *testutil.TaskRepo
	cache *cache.MemoryStore
	log   *testutil.ActivityRepo
	uc    *task.UseCase
}

func newFixture() *fixture {
	f := &fixture{
		tasks: testutil.NewTaskRepo(map[int64]int64{10: 1, 11: 1, 20: 2}),
		cache: cache.NewMemoryStore(),
		log:   &testutil.ActivityRepo{},
	}
	f.uc = task.NewUseCase(f.tasks, f.tasks, f.cache, 30*time.Second, activity.NewRecorder(f.log, logger.Nop()), logger.Nop())
	return f
}

func TestCreateTask_NormalizaPrioridadEstadoYAsignado(t *testing.T) {
	f := newFixture()
	resp, err := f.uc.Create(context.Background(), technician(), dto.CreateTaskRequest{
		BuildingID: 1, RoomID: 10, Title: "  Replace ballast  ", Priority: "urgent", Status: "weird", AssignedTo: "  ", DueDate: "2026-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Replace ballast", resp.Title)
	assert.Equal(t, "", resp.Priority)
	assert.Equal(t, entity.TaskStatusOpen, resp.Status)
	assert.Empty(t, resp.AssignedTo)
	assert.Equal(t, "2026-02-01", resp.DueDate)
	assert.Equal(t, int64(3), *resp.CreatedBy)
	assert.Contains(t, f.log.Actions(), activity.ActionTaskCreate)
}

func TestCreateTask_Validaciones(t *testing.T) {
	cases := []struct {
		name string
		in   dto.CreateTaskRequest
		msg  string
	}{
		{"sin título", dto.CreateTaskRequest{BuildingID: 1, RoomID: 10, Title: " "}, "Title is required"},
		{"sin sala", dto.CreateTaskRequest{BuildingID: 1, Title: "Leak"}, "Building and room are required"},
		{"sala de otro edificio", dto.CreateTaskRequest{BuildingID: 1, RoomID: 20, Title: "Leak"}, "Room does not belong to the selected building"},
		{"fecha inválida", dto.CreateTaskRequest{BuildingID: 1, RoomID: 10, Title: "Leak", DueDate: "01/02/2026"}, "Invalid date format. Use YYYY-MM-DD"},
		{"fecha imposible", dto.CreateTaskRequest{BuildingID: 1, RoomID: 10, Title: "Leak", DueDate: "2026-13-40"}, "Invalid date format. Use YYYY-MM-DD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.Create(context.Background(), technician(), tc.in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var verrs domain.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, []string{tc.msg}, []string(verrs))
		})
	}
}

func TestCreateTask_RequiereManageTasks(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Create(context.Background(), viewer(), dto.CreateTaskRequest{BuildingID: 1, RoomID: 10, Title: "Leak"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Create(context.Background(), nil, dto.CreateTaskRequest{BuildingID: 1, RoomID: 10, Title: "Leak"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListTasks_PaginaYAcotaLimite(t *testing.T) {
	f := newFixture()
	for i := 0; i < 30; i++ {
		f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 10, Title: "Task"})
	}

	page, err := f.uc.List(context.Background(), viewer(), dto.TaskListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 25)
	assert.Equal(t, dto.PageMeta{Total: 30, Page: 1, PerPage: 25, TotalPages: 2}, page.Meta)

	page, err = f.uc.List(context.Background(), viewer(), dto.TaskListQuery{Limit: 500, Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Meta.PerPage)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Len(t, page.Data, 30)

	page, err = f.uc.List(context.Background(), viewer(), dto.TaskListQuery{Limit: 7, Page: 5})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 5, page.Meta.TotalPages)
}

func TestListTasks_PaginaEnormeNoDesbordaElOffset(t *testing.T) {
	f := newFixture()
	f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 10, Title: "Task"})

	page, err := f.uc.List(context.Background(), viewer(), dto.TaskListQuery{Limit: 100, Page: math.MaxInt})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, task.MaxPage, page.Meta.Page)
	assert.Equal(t, 1, page.Meta.Total)
}

func TestListTasks_VacioTieneCeroPaginas(t *testing.T) {
	f := newFixture()
	page, err := f.uc.List(context.Background(), viewer(), dto.TaskListQuery{Status: entity.TaskStatusDone})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 0, page.Meta.TotalPages)
}

func TestListTasks_FiltraYOrdena(t *testing.T) {
	f := newFixture()
	a := f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 10, Title: "Fix door", Priority: "low", DueDate: date("2026-03-01")})
	b := f.tasks.Seed(entity.Task{BuildingID: 2, RoomID: 20, Title: "Paint wall", Priority: "high", AssignedTo: "ana"})
	c := f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 11, Title: "Door closer", Priority: "mid", DueDate: date("2026-02-01"), Status: entity.TaskStatusDone})

	ids := func(q dto.TaskListQuery) []int64 {
		page, err := f.uc.List(context.Background(), viewer(), q)
		require.NoError(t, err)
		out := []int64{}
		for _, r := range page.Data {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []int64{c, b, a}, ids(dto.TaskListQuery{}))
	assert.Equal(t, []int64{c, a, b}, ids(dto.TaskListQuery{Sort: "due_asc"}))
	assert.Equal(t, []int64{b, c, a}, ids(dto.TaskListQuery{Sort: "priority"}))
	assert.Equal(t, []int64{c, b, a}, ids(dto.TaskListQuery{Sort: "bogus"}))
	assert.Equal(t, []int64{c, a}, ids(dto.TaskListQuery{Building: 1}))
	assert.Equal(t, []int64{b}, ids(dto.TaskListQuery{AssignedTo: "ana"}))
	assert.Equal(t, []int64{c, a}, ids(dto.TaskListQuery{Search: "door"}))
	assert.Equal(t, []int64{c}, ids(dto.TaskListQuery{Status: entity.TaskStatusDone}))
}

func TestUpdatePartial_SoloCambiaCamposPresentes(t *testing.T) {
	f := newFixture()
	id := f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 10, Title: "Leak", Priority: "mid", AssignedTo: "ana", DueDate: date("2026-02-01")})

	resp, err := f.uc.UpdatePartial(context.Background(), technician(), id, dto.UpdateTaskRequest{
		Status:     dto.OptionalString{Set: true, Value: str(entity.TaskStatusInProgress)},
		AssignedTo: dto.OptionalString{Set: true, Value: str("")},
		DueDate:    dto.OptionalString{Set: true},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusInProgress, resp.Status)
	assert.Equal(t, "mid", resp.Priority)
	assert.Empty(t, resp.AssignedTo)
	assert.Empty(t, resp.DueDate)
	assert.Contains(t, f.log.Actions(), activity.ActionTaskUpdate)
}

func TestUpdatePartial_SinCamposDevuelveLaTareaIgual(t *testing.T) {
	f := newFixture()
	id := f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 10, Title: "Leak"})
	before, _ := f.tasks.GetByID(context.Background(), id)

	resp, err := f.uc.UpdatePartial(context.Background(), technician(), id, dto.UpdateTaskRequest{})
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, resp.UpdatedAt)
	assert.Empty(t, f.log.Actions())
}

func TestUpdatePartial_Errores(t *testing.T) {
	f := newFixture()
	id := f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 10, Title: "Leak"})

	_, err := f.uc.UpdatePartial(context.Background(), technician(), 999, dto.UpdateTaskRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.UpdatePartial(context.Background(), technician(), id, dto.UpdateTaskRequest{
		Status: dto.OptionalString{Set: true, Value: str("closed")},
	})
	assert.EqualError(t, err, "Invalid status")

	_, err = f.uc.UpdatePartial(context.Background(), technician(), id, dto.UpdateTaskRequest{
		Priority: dto.OptionalString{Set: true, Value: str("urgent")},
	})
	assert.EqualError(t, err, "Invalid priority")

	_, err = f.uc.UpdatePartial(context.Background(), technician(), id, dto.UpdateTaskRequest{
		DueDate: dto.OptionalString{Set: true, Value: str("tomorrow")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.UpdatePartial(context.Background(), viewer(), id, dto.UpdateTaskRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFind_InexistenteEsNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Find(context.Background(), viewer(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummary_CacheadoHastaEscritura(t *testing.T) {
	f := newFixture()
	f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 10, Title: "Leak"})

	s, err := f.uc.Summary(context.Background(), viewer())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.Open)

	_, err = f.uc.Summary(context.Background(), viewer())
	require.NoError(t, err)
	assert.Equal(t, 1, f.tasks.SummaryCalls)

	_, err = f.uc.Create(context.Background(), technician(), dto.CreateTaskRequest{BuildingID: 1, RoomID: 10, Title: "Second"})
	require.NoError(t, err)

	s, err = f.uc.Summary(context.Background(), viewer())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 2, f.tasks.SummaryCalls)
}

func TestSummary_SinCacheConsultaElRepositorio(t *testing.T) {
	tasks := testutil.NewTaskRepo(nil)
	uc := task.NewUseCase(tasks, tasks, nil, time.Minute, nil, nil)
	for i := 0; i < 3; i++ {
		_, err := uc.Summary(context.Background(), viewer())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, tasks.SummaryCalls)
}

func TestRecentlyUpdated_AcotaLimite(t *testing.T) {
	f := newFixture()
	for i := 0; i < 25; i++ {
		f.tasks.Seed(entity.Task{BuildingID: 1, RoomID: 10, Title: "Task"})
	}
	rows, err := f.uc.RecentlyUpdated(context.Background(), viewer(), 50)
	require.NoError(t, err)
	assert.Len(t, rows, 20)
}
