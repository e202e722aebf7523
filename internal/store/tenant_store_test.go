package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureSchemaRejectsUnsafeNames(t *testing.T) {
	s := NewTenantStore(nil)

	// Anything DeriveSchemaName cannot emit is refused before reaching
	// the DDL statement.
	invalid := []string{
		"",
		"Acme",
		"acme corp",
		"acme;drop",
		`acme"corp`,
		"1acme",
		"acme-corp",
	}
	for _, name := range invalid {
		err := s.EnsureSchema(context.Background(), name)
		assert.Error(t, err, "schema name %q must be rejected", name)
	}
}
