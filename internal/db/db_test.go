package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContent(t *testing.T) {
	hash1 := HashContent("hello world")
	assert.Equal(t, hash1, HashContent("hello world"))
	assert.NotEqual(t, hash1, HashContent("different content"))
	assert.Len(t, hash1, 64)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "x", *nullable("x"))
	assert.Equal(t, "", deref(nil))
	assert.Equal(t, "x", deref(nullable("x")))
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"organizations", "founders", "crawled_pages"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schemaSQL, "UNIQUE (organization_id, name_key)")
}
