package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/eventdesk-backend/pkg/config"
)

func TestQualify(t *testing.T) {
	c := &Client{projectID: "proj"}

	cases := []struct {
		kind, name, want string
	}{
		{kindTopic, "quotes", "projects/proj/topics/quotes"},
		{kindTopic, "projects/other/topics/quotes", "projects/other/topics/quotes"},
		{kindSubscription, " quotes-sub ", "projects/proj/subscriptions/quotes-sub"},
		{kindSubscription, "projects/other/topics/quotes", "projects/proj/subscriptions/projects/other/topics/quotes"},
		{kindTopic, "", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.qualify(tc.kind, tc.name), "%s %q", tc.kind, tc.name)
	}
	assert.Empty(t, (&Client{}).qualify(kindTopic, "quotes"))
}

func TestRequiredResources(t *testing.T) {
	got := requiredResources(config.PubSubConfig{
		QuotesTopic:        "quotes",
		QuotesDLQTopic:     " ",
		QuotesSubscription: "quotes-sub",
	})
	assert.Equal(t, []resource{
		{kind: kindTopic, name: "quotes"},
		{kind: kindSubscription, name: "quotes-sub"},
	}, got)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{QuotesTopic: "q"}, nil)
	assert.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, nil)
	assert.ErrorIs(t, err, errNoQuotesTopic)
}

func TestPublisherRejectsUnresolvableTopic(t *testing.T) {
	c := &Client{client: nil, projectID: "proj"}
	_, err := c.publisher("quotes")
	assert.ErrorIs(t, err, errNotInitialized)

	_, err = c.Publish(context.Background(), "quotes", nil)
	assert.ErrorIs(t, err, errNotInitialized)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Empty(t, c.DeadLetterTopic())
	require.NoError(t, c.Close())

	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNotInitialized))
}

func TestDeadLetterTopic(t *testing.T) {
	c := &Client{cfg: config.PubSubConfig{QuotesDLQTopic: " quotes-dlq "}}
	assert.Equal(t, "quotes-dlq", c.DeadLetterTopic())
}
