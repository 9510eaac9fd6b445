package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagAsString(t *testing.T) {
	assert.Equal(t, "env:prod", TagAsString(TagEnv, "prod"))
}

func TestBuildTag(t *testing.T) {
	tags := BuildTag(
		NewTag(TagPath, "/predict"),
		NewTag(TagMethod, "POST"),
		NewTag(TagHttpStatusCode, "200"),
	)
	assert.Equal(t, []string{"path:/predict", "method:POST", "http_status_code:200"}, tags)
}

func TestBuildExternalHTTPServiceTags(t *testing.T) {
	tags := BuildExternalHTTPServiceLatencyTags("cdn.example.com", "/spawns/{id}", "GET", 200)
	assert.Contains(t, tags, "external_service:cdn.example.com")
	assert.Contains(t, tags, "path:/spawns/{id}")
	assert.Contains(t, tags, "method:GET")
	assert.Contains(t, tags, "http_status_code:200")
}
