package broker

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"permanode/domain"
	"permanode/metrics"
)

const collectorInboxSize = 1024

// collectorItem is one feed payload: raw message bytes or a metadata document.
type collectorItem struct {
	raw  []byte
	meta *domain.MessageMetadata
}

type metadataKey struct {
	id         domain.MessageID
	referenced uint32
}

// Collector stores the messages and metadata of its partition and forwards
// milestone related ones to the owning solidifier. Dedupe is bounded by LRU
// caches, so a payload seen long ago may be stored twice; writes are upserts.
type Collector struct {
	index    int
	inbox    chan collectorItem
	ingest   Ingester
	route    func(milestoneIndex uint32) *Solidifier
	observe  func(milestoneIndex uint32)
	messages *lru.Cache[domain.MessageID, *domain.FullMessage]
	metadata *lru.Cache[metadataKey, struct{}]

	// referenced keeps metadata that arrived before its message.
	referenced *lru.Cache[domain.MessageID, *domain.MessageMetadata]

	log   *slog.Logger
	state statusBox
}

func newCollector(index, capacity int, ingest Ingester, route func(uint32) *Solidifier, observe func(uint32)) (*Collector, error) {
	if capacity < 1 {
		capacity = 1
	}
	messages, err := lru.New[domain.MessageID, *domain.FullMessage](capacity)
	if err != nil {
		return nil, err
	}
	metadata, err := lru.New[metadataKey, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	referenced, err := lru.New[domain.MessageID, *domain.MessageMetadata](capacity)
	if err != nil {
		return nil, err
	}
	c := &Collector{
		index:    index,
		inbox:    make(chan collectorItem, collectorInboxSize),
		ingest:   ingest,
		route:    route,
		observe:  observe,
		messages: messages,
		metadata: metadata,

		referenced: referenced,
	}
	c.log = slog.Default()
	return c, nil
}

func (c *Collector) Name() string { return fmt.Sprintf("Collector-%d", c.index) }

func (c *Collector) push(ctx context.Context, item collectorItem) bool {
	select {
	case c.inbox <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Collector) run(ctx context.Context) error {
	c.state.set(StatusRunning)
	defer c.state.set(StatusStopped)

	for {
		select {
		case <-ctx.Done():
			return nil
		case item := <-c.inbox:
			if item.meta != nil {
				c.handleMetadata(ctx, item.meta)
			} else {
				c.handleMessage(ctx, item.raw)
			}
		}
	}
}

func (c *Collector) handleMessage(ctx context.Context, raw []byte) {
	id := domain.ComputeMessageID(raw)
	if c.messages.Contains(id) {
		metrics.DuplicatesDropped.WithLabelValues("message").Inc()
		return
	}

	full, err := domain.NewFullMessage(raw, nil)
	if err != nil {
		c.log.WarnContext(ctx, "dropping malformed message", "message_id", id.String(), "error", err)
		return
	}
	if err := c.ingest.StoreMessage(ctx, full); err != nil {
		c.log.ErrorContext(ctx, "failed to store message", "message_id", id.String(), "error", err)
		return
	}
	c.messages.Add(id, full)

	if meta, ok := c.referenced.Get(id); ok {
		c.referenced.Remove(id)
		ref, _ := meta.ReferencedIndex()
		withMeta := *full
		withMeta.Metadata = meta
		c.route(ref).push(ctx, messageReferenced{id: id, meta: meta, full: &withMeta, index: ref})
	}

	msg, _ := full.Message()
	if _, ok := msg.Milestone(); !ok {
		return
	}
	milestone, err := domain.MilestoneFromMessage(id, msg)
	if err != nil {
		return
	}
	c.observe(milestone.Index)
	c.route(milestone.Index).push(ctx, milestoneArrived{full: full, milestone: milestone})
}

func (c *Collector) handleMetadata(ctx context.Context, meta *domain.MessageMetadata) {
	ref, referenced := meta.ReferencedIndex()
	key := metadataKey{id: meta.MessageID, referenced: ref}
	if c.metadata.Contains(key) {
		metrics.DuplicatesDropped.WithLabelValues("metadata").Inc()
		return
	}
	if err := c.ingest.StoreMetadata(ctx, meta); err != nil {
		c.log.ErrorContext(ctx, "failed to store metadata", "message_id", meta.MessageID.String(), "error", err)
		return
	}
	c.metadata.Add(key, struct{}{})
	if !referenced {
		return
	}

	ev := messageReferenced{id: meta.MessageID, meta: meta, index: ref}
	if cached, ok := c.messages.Get(meta.MessageID); ok {
		withMeta := *cached
		withMeta.Metadata = meta
		ev.full = &withMeta
	} else {
		c.referenced.Add(meta.MessageID, meta)
	}
	c.observe(ref)
	c.route(ref).push(ctx, ev)
}
