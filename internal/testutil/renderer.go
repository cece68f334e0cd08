package testutil

import (
	"context"
	"sync"

	"github.com/jhoicas/punchlist-api/internal/application/transfer"
)

// FormRenderer renderer falso: devuelve un PDF mínimo y guarda los datos recibidos.
type FormRenderer struct {
	mu    sync.Mutex
	Calls []transfer.FormData
	Fail  error
}

var _ transfer.FormRenderer = (*FormRenderer)(nil)

func (r *FormRenderer) RenderTransferForm(_ context.Context, data *transfer.FormData) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.Calls = append(r.Calls, *data)
	return []byte("%PDF-1.4\n%test\n"), nil
}

// Last últimos datos renderizados.
func (r *FormRenderer) Last() (transfer.FormData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Calls) == 0 {
		return transfer.FormData{}, false
	}
	return r.Calls[len(r.Calls)-1], true
}
