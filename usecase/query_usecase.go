package usecase

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"permanode/domain"
	"permanode/port"
	apperrors "permanode/utils/errors"
)

// QueryUsecase serves the read API across keyspaces.
type QueryUsecase struct {
	resolver        port.KeyspaceResolver
	defaultPageSize int
	maxPageSize     int
	syncRange       domain.SyncRange
}

// NewQueryUsecase creates a new QueryUsecase.
func NewQueryUsecase(resolver port.KeyspaceResolver, defaultPageSize, maxPageSize int, syncRange domain.SyncRange) *QueryUsecase {
	if maxPageSize < 1 {
		maxPageSize = 1
	}
	return &QueryUsecase{
		resolver:        resolver,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		syncRange:       syncRange,
	}
}

// ChildrenResult is one page of a message's children.
type ChildrenResult struct {
	MessageID  domain.MessageID   `json:"messageId"`
	MaxResults int                `json:"maxResults"`
	Count      int                `json:"count"`
	Children   []domain.MessageID `json:"childrenMessageIds"`
	State      string             `json:"state,omitempty"`
}

// IndexResult is one page of messages carrying an index.
type IndexResult struct {
	Index      string             `json:"index"`
	MaxResults int                `json:"maxResults"`
	Count      int                `json:"count"`
	MessageIDs []domain.MessageID `json:"messageIds"`
	State      string             `json:"state,omitempty"`
}

func validation(op, msg string, ctx map[string]interface{}) error {
	return apperrors.NewValidationContextError(msg, "usecase", "QueryUsecase", op, ctx)
}

func parseID(op, s string) (domain.MessageID, error) {
	id, err := domain.ParseMessageID(s)
	if err != nil {
		return id, validation(op, "invalid message id", map[string]interface{}{"message_id": s})
	}
	return id, nil
}

// PageSize clamps a requested page size to [1, max]. Zero or less selects
// the default.
func (u *QueryUsecase) PageSize(requested int) int {
	size := requested
	if size <= 0 {
		size = u.defaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > u.maxPageSize {
		size = u.maxPageSize
	}
	return size
}

func decodeState(op, state string) ([]byte, error) {
	if state == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return nil, validation(op, "invalid paging state", nil)
	}
	return b, nil
}

func encodeState(state []byte) string {
	if len(state) == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(state)
}

// ParseIndex converts the index query parameter to bytes. A 0x prefix marks
// hex; anything else is taken as UTF-8 text.
func ParseIndex(s string) ([]byte, error) {
	var index []byte
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		b, err := hex.DecodeString(rest)
		if err != nil {
			return nil, validation("ParseIndex", "index is not valid hex", map[string]interface{}{"index": s})
		}
		index = b
	} else {
		index = []byte(s)
	}
	if len(index) < domain.MinIndexLength || len(index) > domain.MaxIndexLength {
		return nil, validation("ParseIndex", "index must be 1 to 64 bytes", map[string]interface{}{"index": s})
	}
	return index, nil
}

// ParseMilestoneIndex parses a positive 32 bit milestone index.
func ParseMilestoneIndex(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0, validation("ParseMilestoneIndex", "invalid milestone index", map[string]interface{}{"milestone_index": s})
	}
	return uint32(v), nil
}

func (u *QueryUsecase) GetMessage(ctx context.Context, keyspace, messageID string) (*domain.Message, error) {
	id, err := parseID("GetMessage", messageID)
	if err != nil {
		return nil, err
	}
	store, err := u.resolver.ForKeyspace(keyspace)
	if err != nil {
		return nil, err
	}
	full, err := store.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	return full.Message()
}

func (u *QueryUsecase) GetMetadata(ctx context.Context, keyspace, messageID string) (*domain.MessageMetadata, error) {
	id, err := parseID("GetMetadata", messageID)
	if err != nil {
		return nil, err
	}
	store, err := u.resolver.ForKeyspace(keyspace)
	if err != nil {
		return nil, err
	}
	return store.GetMetadata(ctx, id)
}

func (u *QueryUsecase) GetChildren(ctx context.Context, keyspace, messageID string, pageSize int, state string) (*ChildrenResult, error) {
	id, err := parseID("GetChildren", messageID)
	if err != nil {
		return nil, err
	}
	rawState, err := decodeState("GetChildren", state)
	if err != nil {
		return nil, err
	}
	store, err := u.resolver.ForKeyspace(keyspace)
	if err != nil {
		return nil, err
	}

	size := u.PageSize(pageSize)
	page, err := store.GetChildren(ctx, id, port.Page{Size: size, State: rawState})
	if err != nil {
		return nil, err
	}
	children := page.IDs
	if children == nil {
		children = []domain.MessageID{}
	}
	return &ChildrenResult{
		MessageID:  id,
		MaxResults: size,
		Count:      len(children),
		Children:   children,
		State:      encodeState(page.State),
	}, nil
}

func (u *QueryUsecase) GetByIndex(ctx context.Context, keyspace, index string, pageSize int, state string) (*IndexResult, error) {
	if index == "" {
		return nil, validation("GetByIndex", "index query parameter is required", nil)
	}
	raw, err := ParseIndex(index)
	if err != nil {
		return nil, err
	}
	rawState, err := decodeState("GetByIndex", state)
	if err != nil {
		return nil, err
	}
	store, err := u.resolver.ForKeyspace(keyspace)
	if err != nil {
		return nil, err
	}

	size := u.PageSize(pageSize)
	page, err := store.GetByIndex(ctx, domain.HashedIndex(raw), port.Page{Size: size, State: rawState})
	if err != nil {
		return nil, err
	}
	ids := page.IDs
	if ids == nil {
		ids = []domain.MessageID{}
	}
	return &IndexResult{
		Index:      index,
		MaxResults: size,
		Count:      len(ids),
		MessageIDs: ids,
		State:      encodeState(page.State),
	}, nil
}

func (u *QueryUsecase) GetMilestone(ctx context.Context, keyspace, index string) (*domain.Milestone, error) {
	ix, err := ParseMilestoneIndex(index)
	if err != nil {
		return nil, err
	}
	store, err := u.resolver.ForKeyspace(keyspace)
	if err != nil {
		return nil, err
	}
	return store.GetMilestone(ctx, ix)
}

// SyncSummary reports completed, unlogged and missing milestone ranges up
// to the highest milestone recorded in the sync table.
func (u *QueryUsecase) SyncSummary(ctx context.Context, keyspace string) (*domain.SyncSummary, error) {
	store, err := u.resolver.ForKeyspace(keyspace)
	if err != nil {
		return nil, err
	}
	records, err := store.GetSyncRecords(ctx, u.syncRange)
	if err != nil {
		return nil, err
	}

	r := u.syncRange
	if highest, ok := highestRecord(records); ok {
		r = r.Clamp(highest)
	} else {
		r.To = r.From
	}
	summary := domain.BuildSyncData(r, records).Summary()
	return &summary, nil
}

func highestRecord(records []domain.SyncRecord) (uint32, bool) {
	var highest uint32
	for _, rec := range records {
		if rec.MilestoneIndex > highest {
			highest = rec.MilestoneIndex
		}
	}
	return highest, len(records) > 0
}
