// Package fetcher resolves the result reference of a submission into its raw
// payload.
package fetcher

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/vincent-petithory/dataurl"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

const (
	SourceCache   = "cache"
	SourceDataURI = "data-uri"
	SourceHTTP    = "http"
	SourceMemory  = "memory"
)

var errTooLarge = errors.New("result exceeds size limit")

// Config contains the configurable options of the result fetcher.
type Config struct {
	CacheDir   string        // directory of pre-fetched results; empty disables the cache
	Timeout    time.Duration // hard timeout of a single HTTP fetch
	MaxBytes   int64         // largest accepted payload
	MemorySize int           // number of HTTP results kept in memory; 0 disables
}

func DefaultConfig() Config {
	return Config{
		CacheDir:   "",
		Timeout:    10 * time.Second,
		MaxBytes:   10 << 20,
		MemorySize: 128,
	}
}

// Fetcher looks up results in the local cache first and then resolves the
// result URI by scheme. It never fails; unresolvable results are reported as
// unavailable.
type Fetcher struct {
	log    zerolog.Logger
	config Config
	client *http.Client
	// HTTP results by URI, so retries of an evaluation do not download again
	memory *lru.Cache[string, validation.FetchResult]
}

var _ module.ResultFetcher = (*Fetcher)(nil)

func New(log zerolog.Logger, config Config, client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		log:    log.With().Str("module", "result_fetcher").Logger(),
		config: config,
		client: client,
	}
	if config.MemorySize > 0 {
		// only errors on a non-positive size
		f.memory, _ = lru.New[string, validation.FetchResult](config.MemorySize)
	}
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, submission *validation.SubmissionInfo) validation.FetchResult {
	if submission == nil {
		return validation.FetchResult{}
	}
	lg := f.log.With().
		Uint64(logging.KeyJobID, uint64(submission.JobID)).
		Str("result_uri", submission.ResultURI).
		Logger()

	if payload, ok := f.fromCache(lg, submission); ok {
		return validation.FetchResult{Payload: &payload, Source: SourceCache}
	}

	uri := strings.TrimSpace(submission.ResultURI)
	if uri == "" {
		lg.Debug().Msg("submission has no result uri")
		return validation.FetchResult{}
	}

	if hasScheme(uri, "data") {
		payload, contentType, err := decodeDataURI(uri)
		if err != nil {
			lg.Warn().Err(err).Msg("could not decode data uri")
			return validation.FetchResult{}
		}
		return validation.FetchResult{
			Payload:     &payload,
			Source:      SourceDataURI,
			ContentType: contentType,
		}
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		lg.Warn().Err(err).Msg("invalid result uri")
		return validation.FetchResult{}
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		if f.memory != nil {
			if result, ok := f.memory.Get(uri); ok {
				result.Source = SourceMemory
				return result
			}
		}
		payload, contentType, err := f.fromHTTP(ctx, uri)
		if err != nil {
			lg.Warn().Err(err).Msg("could not fetch result")
			return validation.FetchResult{}
		}
		result := validation.FetchResult{
			Payload:     &payload,
			Source:      SourceHTTP,
			ContentType: contentType,
		}
		if f.memory != nil {
			f.memory.Add(uri, result)
		}
		return result
	default:
		lg.Debug().Str("scheme", parsed.Scheme).Msg("unsupported result uri scheme")
		return validation.FetchResult{}
	}
}

func hasScheme(uri string, scheme string) bool {
	return len(uri) > len(scheme) && uri[len(scheme)] == ':' && strings.EqualFold(uri[:len(scheme)], scheme)
}

// decodeDataURI decodes a data: URI. URIs rejected by the strict RFC 2397
// decoder, such as unescaped JSON, are decoded from the text after the first
// comma.
func decodeDataURI(uri string) (string, string, error) {
	decoded, err := dataurl.DecodeString(uri)
	if err == nil {
		return string(decoded.Data), decoded.ContentType(), nil
	}

	header, data, found := strings.Cut(uri[len("data:"):], ",")
	if !found {
		return "", "", fmt.Errorf("data uri without payload: %w", err)
	}
	params := strings.Split(header, ";")
	contentType := strings.TrimSpace(params[0])
	if contentType == "" {
		contentType = "text/plain"
	}

	if strings.EqualFold(strings.TrimSpace(params[len(params)-1]), "base64") {
		raw, b64err := base64.StdEncoding.DecodeString(data)
		if b64err != nil {
			return "", "", fmt.Errorf("invalid base64 payload: %w", b64err)
		}
		return string(raw), contentType, nil
	}

	unescaped, unescapeErr := url.PathUnescape(data)
	if unescapeErr != nil {
		// a literal percent sign that is not an escape sequence
		return data, contentType, nil
	}
	return unescaped, contentType, nil
}

// cacheCandidates returns the file names under which a result may be cached:
// the job id and the result hash with and without 0x prefix, each also with a
// .json extension.
func cacheCandidates(submission *validation.SubmissionInfo) []string {
	hash := strings.ToLower(submission.ResultHash.Hex())
	bases := []string{
		submission.JobID.String(),
		hash,
		strings.TrimPrefix(hash, "0x"),
	}
	names := make([]string, 0, 2*len(bases))
	for _, base := range bases {
		names = append(names, base, base+".json")
	}
	return names
}

func (f *Fetcher) fromCache(lg zerolog.Logger, submission *validation.SubmissionInfo) (string, bool) {
	if f.config.CacheDir == "" {
		return "", false
	}
	for _, name := range cacheCandidates(submission) {
		path := filepath.Join(f.config.CacheDir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if f.config.MaxBytes > 0 && info.Size() > f.config.MaxBytes {
			lg.Warn().Str("path", path).Int64("size", info.Size()).Msg("cached result exceeds size limit")
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			lg.Warn().Err(err).Str("path", path).Msg("could not read cached result")
			continue
		}
		return string(data), true
	}
	return "", false
}

func (f *Fetcher) fromHTTP(ctx context.Context, uri string) (string, string, error) {
	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", "", fmt.Errorf("could not create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.config.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.config.MaxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("could not read body: %w", err)
	}
	if f.config.MaxBytes > 0 && int64(len(data)) > f.config.MaxBytes {
		return "", "", errTooLarge
	}
	return string(data), resp.Header.Get("Content-Type"), nil
}
