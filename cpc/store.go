package cpc

import "context"

// Store persists the open queue snapshot so it survives restarts.
// The snapshot is whole-queue: every mutation rewrites it.
type Store interface {
	SaveFila(ctx context.Context, fila Fila) error
	LoadFila(ctx context.Context) (Fila, bool, error)
	ClearFila(ctx context.Context) error
}
