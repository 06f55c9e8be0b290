package services

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"patient-record-service/internal/core/domain"
)

const (
	cacheNamespace   = "patients"
	patientKeyPrefix = cacheNamespace + ":patient:"
	listKeyPrefix    = cacheNamespace + ":list:"
	statsCacheKey    = cacheNamespace + ":stats"
)

// Tunable TTLs; the cache is an optimization, not a protocol requirement.
const (
	patientTTL = time.Hour
	listTTL    = 30 * time.Minute
	statsTTL   = 2 * time.Hour
)

func patientCacheKey(id string) string {
	return patientKeyPrefix + id
}

// listCacheKey serializes the list options in a fixed field order so that
// semantically identical queries always hash to the same key. String segments
// are query-escaped: a search term containing "&" or "=" must not be able to
// masquerade as another field. Never rely on map iteration or default struct
// printing here.
func listCacheKey(opts domain.ListPatientsOptions) string {
	minAge, maxAge := "", ""
	if opts.MinAge != nil {
		minAge = strconv.Itoa(*opts.MinAge)
	}
	if opts.MaxAge != nil {
		maxAge = strconv.Itoa(*opts.MaxAge)
	}
	return fmt.Sprintf("%spage=%d&limit=%d&search=%s&sortBy=%s&sortOrder=%s&minAge=%s&maxAge=%s",
		listKeyPrefix, opts.Page, opts.Limit,
		url.QueryEscape(opts.Search), url.QueryEscape(opts.SortBy), url.QueryEscape(opts.SortOrder),
		minAge, maxAge)
}
