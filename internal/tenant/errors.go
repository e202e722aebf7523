package tenant

import "errors"

var (
	// ErrMissingField is returned when a signup lacks a required field.
	ErrMissingField = errors.New("tenant name and domain name are required")

	// ErrDuplicateDomain is returned when the desired domain collides
	// with a provisioned domain or another pending request.
	ErrDuplicateDomain = errors.New("this domain name is already taken")

	// ErrSchemaNameTaken is returned when approval would derive a schema
	// name that already belongs to another client. Nothing is committed
	// for that request.
	ErrSchemaNameTaken = errors.New("derived schema name already exists")
)
