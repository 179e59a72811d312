package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		backend string
		origins []string
		ttl     time.Duration
	}{
		{
			name:    "local defaults",
			values:  map[string]any{"CORS_ALLOWED_ORIGINS": "*", "JWT_TTL_HOURS": 24},
			backend: "local",
			origins: []string{"*"},
			ttl:     24 * time.Hour,
		},
		{
			name:    "cloud run implies gcs",
			values:  map[string]any{"K_SERVICE": "procurement-api", "JWT_TTL_HOURS": 8},
			backend: "gcs",
			ttl:     8 * time.Hour,
		},
		{
			name:    "legacy USE_GCS flag",
			values:  map[string]any{"USE_GCS": "true"},
			backend: "gcs",
			ttl:     24 * time.Hour,
		},
		{
			name:    "explicit backend wins",
			values:  map[string]any{"STORAGE_BACKEND": "LOCAL", "K_SERVICE": "x"},
			backend: "local",
			ttl:     24 * time.Hour,
		},
		{
			name:    "origin list",
			values:  map[string]any{"CORS_ALLOWED_ORIGINS": "https://app.example, https://admin.example ,"},
			backend: "local",
			origins: []string{"https://app.example", "https://admin.example"},
			ttl:     24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			s := fromViper(v)
			assert.Equal(t, tt.backend, s.StorageBackend)
			assert.Equal(t, tt.origins, s.CORSOrigins)
			assert.Equal(t, tt.ttl, s.JWTTTL)
		})
	}
}

func TestDocumentTablesIsACopy(t *testing.T) {
	tables := DocumentTables()
	tables[0] = "changed"
	assert.Equal(t, "rfqs", DocumentTables()[0])
	assert.Len(t, DocumentTables(), 8)
}
