// Package repository holds the data access logic of the planner.  Every
// query is parameterized and every single-record read or write on an owned
// resource filters by both the record id and the owner id, so a record
// owned by someone else is reported exactly like a missing one.
package repository

import "errors"

// ErrNotFound is returned when no row matches the id (and owner).  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would duplicate a
// user's email address.
var ErrEmailExists = errors.New("email already exists")
