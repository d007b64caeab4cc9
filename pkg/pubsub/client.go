package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/eventdesk-backend/pkg/config"
	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
)

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

var (
	// ErrUnknownTopic is returned when a topic name cannot be qualified.
	// Retrying the same message will not help.
	ErrUnknownTopic = errors.New("pubsub topic cannot be resolved")

	errProjectIDRequired = errors.New("gcp project id is required")
	errNoQuotesTopic     = errors.New("pubsub quotes topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client publishes quote events to the configured topics. Publisher handles
// are created lazily and reused until Close.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

type resource struct {
	kind string
	name string
}

// NewClient dials Pub/Sub and fails when a configured topic or subscription is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.QuotesTopic) == "" {
		return nil, errNoQuotesTopic
	}

	raw, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{
		client:     raw,
		projectID:  project,
		cfg:        cfg,
		publishers: make(map[string]*pubsub.Publisher),
	}
	if err := c.Ping(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "project_id", project), "pubsub client initialized")
	}
	return c, nil
}

func requiredResources(cfg config.PubSubConfig) []resource {
	var out []resource
	for _, topic := range []string{cfg.QuotesTopic, cfg.QuotesDLQTopic} {
		if name := strings.TrimSpace(topic); name != "" {
			out = append(out, resource{kind: kindTopic, name: name})
		}
	}
	if name := strings.TrimSpace(cfg.QuotesSubscription); name != "" {
		out = append(out, resource{kind: kindSubscription, name: name})
	}
	return out
}

// Ping checks every configured topic and subscription exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	for _, r := range requiredResources(c.cfg) {
		if err := c.lookup(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) lookup(ctx context.Context, r resource) error {
	full := c.qualify(r.kind, r.name)
	if full == "" {
		return fmt.Errorf("%s %q not configured", r.kind, r.name)
	}

	var err error
	switch r.kind {
	case kindTopic:
		_, err = c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: full})
	case kindSubscription:
		_, err = c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: full})
	}
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", r.kind, r.name)
	default:
		return fmt.Errorf("checking %s %q: %w", r.kind, r.name, err)
	}
}

// DeadLetterTopic is the topic that receives copies of parked events, or "".
func (c *Client) DeadLetterTopic() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.cfg.QuotesDLQTopic)
}

// Publish sends msg to topic and waits for the server-assigned id.
func (c *Client) Publish(ctx context.Context, topic string, msg *pubsub.Message) (string, error) {
	pub, err := c.publisher(topic)
	if err != nil {
		return "", err
	}
	return pub.Publish(ctx, msg).Get(ctx)
}

func (c *Client) publisher(topic string) (*pubsub.Publisher, error) {
	if c == nil || c.client == nil {
		return nil, errNotInitialized
	}
	full := c.qualify(kindTopic, topic)
	if full == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if pub, ok := c.publishers[full]; ok {
		return pub, nil
	}
	if c.publishers == nil {
		c.publishers = make(map[string]*pubsub.Publisher)
	}
	pub := c.client.Publisher(full)
	c.publishers[full] = pub
	return pub, nil
}

// Close flushes open publishers and releases the client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	for name, pub := range c.publishers {
		pub.Stop()
		delete(c.publishers, name)
	}
	c.mu.Unlock()
	return c.client.Close()
}

// qualify expands a short name into projects/<id>/<kind>/<name>. Fully
// qualified names pass through.
func (c *Client) qualify(kind, name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/") {
		return n
	}
	if c.projectID == "" {
		return ""
	}
	return "projects/" + c.projectID + "/" + kind + "/" + n
}
