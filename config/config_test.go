package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
mongo:
  uri: mongodb://localhost:27017
elasticsearch:
  addresses: ["http://localhost:9200"]
`))
	require.NoError(t, err)

	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, "social_content", c.Mongo.Database)
	assert.Equal(t, "dev", c.Elasticsearch.Namespace)
	assert.Equal(t, 5, c.Elasticsearch.MaxRetries)
	assert.Equal(t, ":8080", c.API.Addr)
	assert.Equal(t, 5*time.Second, c.Clients.Timeout)
}

func TestParseReadsDurations(t *testing.T) {
	c, err := Parse([]byte(`
publishing:
  min_schedule_lead: 30m
clients:
  timeout: 2s
elasticsearch:
  namespace: prod
  max_retries: 3
`))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, c.Publishing.MinScheduleLead)
	assert.Equal(t, 2*time.Second, c.Clients.Timeout)
	assert.Equal(t, "prod", c.Elasticsearch.Namespace)
	assert.Equal(t, 3, c.Elasticsearch.MaxRetries)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("ELASTICSEARCH_ADDRESSES", "http://es1:9200,http://es2:9200")

	c, err := Parse([]byte(`mongo: {uri: mongodb://localhost}`))
	require.NoError(t, err)
	applyEnv(&c)

	assert.Equal(t, "mongodb://mongo:27017", c.Mongo.URI)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, c.Elasticsearch.Addresses)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("logging: ["))
	assert.Error(t, err)
}
