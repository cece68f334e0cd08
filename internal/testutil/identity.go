package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

// UserRepo registro core en memoria.
type UserRepo struct {
	mu     sync.Mutex
	users  map[int64]entity.User
	nextID int64

	FailGet    error
	FailDelete error
	Deleted    []int64
}

var _ repository.UserRepository = (*UserRepo)(nil)

// NewUserRepo crea el repo con los usuarios dados.
func NewUserRepo(users ...entity.User) *UserRepo {
	r := &UserRepo{users: map[int64]entity.User{}}
	for _, u := range users {
		r.put(u)
	}
	return r
}

func (r *UserRepo) put(u entity.User) {
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	}
	if u.ID > r.nextID {
		r.nextID = u.ID
	}
	r.users[u.ID] = u
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailGet != nil {
		return nil, r.FailGet
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepo) SetSuspended(_ context.Context, id int64, suspended bool, by *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if suspended {
		now := time.Now()
		u.SuspendedAt, u.SuspendedBy = &now, by
	} else {
		u.SuspendedAt, u.SuspendedBy = nil, nil
	}
	r.users[id] = u
	return nil
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.SectorID != nil && (u.SectorID == nil || *u.SectorID != *f.SectorID) {
			continue
		}
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDelete != nil {
		return r.FailDelete
	}
	delete(r.users, id)
	r.Deleted = append(r.Deleted, id)
	return nil
}

func (r *UserRepo) CountBySector(_ context.Context, sectorID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.SectorID != nil && *u.SectorID == sectorID {
			n++
		}
	}
	return n, nil
}

func (r *UserRepo) ListRoles(context.Context) ([]entity.Role, error) {
	return []entity.Role{
		{ID: 1, Slug: entity.RoleRoot, Label: "Root"},
		{ID: 2, Slug: entity.RoleAdmin, Label: "Administrator"},
		{ID: 3, Slug: entity.RoleManager, Label: "Manager"},
		{ID: 4, Slug: entity.RoleTechnician, Label: "Technician"},
		{ID: 5, Slug: entity.RoleViewer, Label: "Viewer"},
	}, nil
}

// MirrorRepo espejo apps en memoria.
type MirrorRepo struct {
	mu    sync.Mutex
	users map[int64]entity.User

	FailUpsert error
}

var _ repository.UserMirrorRepository = (*MirrorRepo)(nil)

// NewMirrorRepo crea el espejo con los usuarios dados.
func NewMirrorRepo(users ...entity.User) *MirrorRepo {
	r := &MirrorRepo{users: map[int64]entity.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *MirrorRepo) Upsert(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailUpsert != nil {
		return r.FailUpsert
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MirrorRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *MirrorRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// Len cantidad de filas espejo.
func (r *MirrorRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// OverrideRepo overrides en memoria. Calls cuenta las lecturas de ListByUser.
type OverrideRepo struct {
	mu    sync.Mutex
	rows  map[int64]map[string]bool
	roles map[string]map[string]bool
	Calls int

	FailList   error
	FailUpsert error
	// FailApplyAfter hace fallar Apply tras esa cantidad de escrituras (0 = nunca).
	FailApplyAfter int
}

var _ repository.PermissionOverrideRepository = (*OverrideRepo)(nil)

// NewOverrideRepo crea el repo vacío.
func NewOverrideRepo() *OverrideRepo {
	return &OverrideRepo{rows: map[int64]map[string]bool{}, roles: map[string]map[string]bool{}}
}

// SetRoleDefault fila de role_permissions.
func (r *OverrideRepo) SetRoleDefault(role, key string, granted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roles[role] == nil {
		r.roles[role] = map[string]bool{}
	}
	r.roles[role][key] = granted
}

func (r *OverrideRepo) ListByUser(_ context.Context, userID int64) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.FailList != nil {
		return nil, r.FailList
	}
	out := map[string]bool{}
	for k, v := range r.rows[userID] {
		out[k] = v
	}
	return out, nil
}

func (r *OverrideRepo) Upsert(_ context.Context, userID int64, key string, granted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailUpsert != nil {
		return r.FailUpsert
	}
	if r.rows[userID] == nil {
		r.rows[userID] = map[string]bool{}
	}
	r.rows[userID][key] = granted
	return nil
}

func (r *OverrideRepo) Delete(_ context.Context, userID int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows[userID], key)
	return nil
}

// Apply aplica sobre una copia y solo la publica si todas las escrituras pasan.
func (r *OverrideRepo) Apply(_ context.Context, userID int64, set map[string]bool, clear []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := map[string]bool{}
	for k, v := range r.rows[userID] {
		next[k] = v
	}
	writes := 0
	step := func() error {
		writes++
		if r.FailUpsert != nil || (r.FailApplyAfter > 0 && writes > r.FailApplyAfter) {
			return errors.New("core down")
		}
		return nil
	}
	for _, k := range clear {
		if err := step(); err != nil {
			return err
		}
		delete(next, k)
	}
	for k, v := range set {
		if err := step(); err != nil {
			return err
		}
		next[k] = v
	}
	r.rows[userID] = next
	return nil
}

func (r *OverrideRepo) RoleDefaults(context.Context) (map[string]map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]map[string]bool{}
	for role, perms := range r.roles {
		out[role] = map[string]bool{}
		for k, v := range perms {
			out[role][k] = v
		}
	}
	return out, nil
}

// Rows filas del usuario (copia).
func (r *OverrideRepo) Rows(userID int64) map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for k, v := range r.rows[userID] {
		out[k] = v
	}
	return out
}

// SectorRepo directorio de sectores en memoria.
type SectorRepo struct {
	mu      sync.Mutex
	sectors map[int64]entity.Sector
	nextID  int64
	// Users si se define, Delete devuelve ErrInUse cuando algún usuario referencia el sector.
	Users *UserRepo

	FailNames error
}

var _ repository.SectorRepository = (*SectorRepo)(nil)

// NewSectorRepo crea el repo con los sectores dados.
func NewSectorRepo(sectors ...entity.Sector) *SectorRepo {
	r := &SectorRepo{sectors: map[int64]entity.Sector{}}
	for _, s := range sectors {
		if s.ID == 0 {
			r.nextID++
			s.ID = r.nextID
		}
		if s.ID > r.nextID {
			r.nextID = s.ID
		}
		r.sectors[s.ID] = s
	}
	return r
}

func (r *SectorRepo) Create(_ context.Context, s *entity.Sector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sectors {
		if existing.Slug == s.Slug {
			return domain.ErrDuplicate
		}
	}
	r.nextID++
	s.ID = r.nextID
	r.sectors[s.ID] = *s
	return nil
}

func (r *SectorRepo) GetByID(_ context.Context, id int64) (*entity.Sector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sectors[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SectorRepo) Update(_ context.Context, s *entity.Sector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sectors[s.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range r.sectors {
		if id != s.ID && existing.Slug == s.Slug {
			return domain.ErrDuplicate
		}
	}
	r.sectors[s.ID] = *s
	return nil
}

func (r *SectorRepo) Delete(ctx context.Context, id int64) error {
	if r.Users != nil {
		if n, _ := r.Users.CountBySector(ctx, id); n > 0 {
			return domain.ErrInUse
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sectors[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sectors, id)
	return nil
}

func (r *SectorRepo) List(context.Context) ([]*entity.Sector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Sector
	for _, s := range r.sectors {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *SectorRepo) NamesByIDs(_ context.Context, ids []int64) (map[int64]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailNames != nil {
		return nil, r.FailNames
	}
	out := map[int64]string{}
	for _, id := range ids {
		if s, ok := r.sectors[id]; ok {
			out[id] = s.Name
		}
	}
	return out, nil
}

// ActivityRepo bitácora en memoria.
type ActivityRepo struct {
	mu      sync.Mutex
	Entries []entity.ActivityEntry
	Fail    error
}

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

func (r *ActivityRepo) Record(_ context.Context, e *entity.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.Entries = append(r.Entries, *e)
	return nil
}

// Actions acciones registradas en orden.
func (r *ActivityRepo) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Action)
	}
	return out
}
