package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

const (
	matchCacheKeyPrefix = "roles:match:"
	MatchCachePattern   = "roles:match:*"
)

type matchCacheKeyInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IndustryID  string `json:"industry_id"`
	Limit       int    `json:"limit"`
}

func normalizeMatchValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

func MatchCacheKey(title, description string, industryID *uuid.UUID, limit int) string {
	in := matchCacheKeyInput{
		Title:       normalizeMatchValue(title),
		Description: normalizeMatchValue(description),
		Limit:       limit,
	}
	if industryID != nil {
		in.IndustryID = industryID.String()
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return matchCacheKeyPrefix + hex.EncodeToString(sum[:])
}
