package handler

import (
    "context"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/response"
)

// OwnedStore is the persistence contract of a resource owned by one user.
// Implementations filter every single-record operation by id and owner and
// report foreign records as repository.ErrNotFound.
type OwnedStore[T any] interface {
    ListByOwner(ctx context.Context, ownerID uint64) ([]T, error)
    GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (T, error)
    Create(ctx context.Context, v T) error
    Update(ctx context.Context, v T) error
    DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// Resource is the CRUD controller shared by tasks, habits and events.
// Build validates a create payload and returns the new entity for the
// owner; Apply merges an update payload into a loaded entity.
type Resource[T any] struct {
    Store OwnedStore[T]
    Noun  string
    Build func(ownerID uint64, p Payload) (T, error)
    Apply func(v T, p Payload) error
}

// List handles GET /api/<resource>.
func (r *Resource[T]) List(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    items, err := r.Store.ListByOwner(ctx, uid)
    if err != nil {
        return response.Persistence(err)
    }
    return response.OK(c, items)
}

// Get handles GET /api/<resource>/{id}.
func (r *Resource[T]) Get(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    v, err := r.Store.GetByIDAndOwner(ctx, id, uid)
    if err != nil {
        return storeErr(err, r.Noun+" not found")
    }
    return response.OK(c, v)
}

// Create handles POST /api/<resource>.  Nothing is stored unless Build
// accepts the payload.
func (r *Resource[T]) Create(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    p, err := bindPayload(c)
    if err != nil {
        return err
    }
    v, err := r.Build(uid, p)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := r.Store.Create(ctx, v); err != nil {
        return response.Persistence(err)
    }
    return response.Created(c, r.Noun+" created", v)
}

// Update handles PUT /api/<resource>/{id}.  Keys absent from the body keep
// their stored value.
func (r *Resource[T]) Update(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c)
    if err != nil {
        return err
    }
    p, err := bindPayload(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    v, err := r.Store.GetByIDAndOwner(ctx, id, uid)
    if err != nil {
        return storeErr(err, r.Noun+" not found")
    }
    if err := r.Apply(v, p); err != nil {
        return err
    }
    if err := r.Store.Update(ctx, v); err != nil {
        return response.Persistence(err)
    }
    v, err = r.Store.GetByIDAndOwner(ctx, id, uid)
    if err != nil {
        return storeErr(err, r.Noun+" not found")
    }
    return response.Message(c, r.Noun+" updated", v)
}

// Delete handles DELETE /api/<resource>/{id}.
func (r *Resource[T]) Delete(c echo.Context) error {
    uid, err := ownerID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := r.Store.DeleteByIDAndOwner(ctx, id, uid); err != nil {
        return storeErr(err, r.Noun+" not found")
    }
    return response.Message(c, r.Noun+" deleted", nil)
}
