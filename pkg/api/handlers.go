package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/Neopallium/sub-script/pkg/codec"
	"github.com/Neopallium/sub-script/pkg/storage"
	"github.com/Neopallium/sub-script/pkg/types"
	"github.com/Neopallium/sub-script/pkg/value"
)

// maxBodyBytes caps encode and decode request bodies
const maxBodyBytes = 4 << 20

var errTypeNotFound = errors.New("type not found")

// Server holds the API server state
type Server struct {
	lookup    TypeLookup
	snapshots SnapshotReader
	config    ServerConfig
	metrics   *Metrics
	log       *zap.Logger
}

// NewServer creates a new API server. snapshots may be nil.
func NewServer(lookup TypeLookup, snapshots SnapshotReader, config ServerConfig, metrics *Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		lookup:    lookup,
		snapshots: snapshots,
		config:    config,
		metrics:   metrics,
		log:       log,
	}
}

// codecStatus maps registry and codec errors to an HTTP status
func codecStatus(err error) int {
	switch {
	case errors.Is(err, errTypeNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrSchemaParse), errors.Is(err, value.ErrJSON):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrShapeMismatch),
		errors.Is(err, types.ErrUnresolvedType),
		errors.Is(err, types.ErrUnknownVariant),
		errors.Is(err, types.ErrTruncated),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrRecursionLimit),
		errors.Is(err, codec.ErrNonCanonical),
		errors.Is(err, codec.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func typeName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errors.New("type name is required")
	}
	return name, nil
}

// resolveType looks up a registered name, or parses a Vec<..>, (..) or [..; n]
// expression. Unknown bare names are not added to the registry.
func (s *Server) resolveType(name string) (*types.TypeRef, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "T::")
	if ref, ok := s.lookup.Get(name); ok {
		return ref, nil
	}
	if !strings.HasSuffix(name, ">") && !strings.HasSuffix(name, ")") && !strings.HasSuffix(name, "]") {
		return nil, errors.Wrapf(errTypeNotFound, "%q", name)
	}
	return s.lookup.ParseType(name)
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(into)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]any{
		"status":     "healthy",
		"types":      s.lookup.Len(),
		"unresolved": len(s.lookup.Unresolved()),
	})
}

func (s *Server) typeInfo(name string, ref *types.TypeRef) TypeInfo {
	return TypeInfo{Name: name, Definition: types.Describe(ref), Resolved: ref.IsResolved()}
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	names := s.lookup.Names()
	out := make([]TypeInfo, 0, len(names))
	for _, name := range names {
		if ref, ok := s.lookup.Get(name); ok {
			out = append(out, s.typeInfo(name, ref))
		}
	}
	s.metrics.UpdateTypeCount(len(names))
	sendSuccess(w, out)
}

func (s *Server) handleUnresolved(w http.ResponseWriter, r *http.Request) {
	names := s.lookup.Unresolved()
	if names == nil {
		names = []string{}
	}
	sendSuccess(w, names)
}

func (s *Server) handleGetType(w http.ResponseWriter, r *http.Request) {
	name, err := typeName(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ref, ok := s.lookup.Get(name)
	if !ok {
		sendError(w, "unknown type "+name, http.StatusNotFound)
		return
	}
	sendSuccess(w, s.typeInfo(name, ref))
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name, err := typeName(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req EncodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if len(req.Value) == 0 {
		sendError(w, "value is required", http.StatusBadRequest)
		return
	}
	v, err := value.FromJSON(req.Value)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ref, err := s.resolveType(name)
	if err != nil {
		s.metrics.RecordCodecOperation("encode", false, 0)
		sendError(w, err.Error(), codecStatus(err))
		return
	}
	data, err := ref.Encode(v)
	if err != nil {
		s.metrics.RecordCodecOperation("encode", false, 0)
		s.log.Debug("encode failed", zap.String("type", name), zap.Error(err))
		sendError(w, err.Error(), codecStatus(err))
		return
	}

	s.metrics.RecordCodecOperation("encode", true, len(data))
	s.log.Debug("encoded value",
		zap.String("type", name),
		zap.Int("size", len(data)),
		zap.Duration("took", time.Since(start)))
	sendSuccess(w, EncodeResponse{Type: name, Hex: value.Hex(data), Size: len(data)})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	name, err := typeName(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req DecodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	data, err := value.ParseHex(req.Hex)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ref, err := s.resolveType(name)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", false, 0)
		sendError(w, err.Error(), codecStatus(err))
		return
	}
	var v any
	if req.Partial {
		v, err = ref.Decode(data)
	} else {
		v, err = ref.DecodeAll(data)
	}
	if err != nil {
		s.metrics.RecordCodecOperation("decode", false, 0)
		s.log.Debug("decode failed", zap.String("type", name), zap.Error(err))
		sendError(w, err.Error(), codecStatus(err))
		return
	}

	out, err := value.ToJSON(v)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", false, 0)
		sendError(w, "Failed to render decoded value", http.StatusInternalServerError)
		return
	}
	s.metrics.RecordCodecOperation("decode", true, len(data))
	sendSuccess(w, DecodeResponse{Type: name, Value: out})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		sendError(w, "snapshot store not configured", http.StatusNotFound)
		return
	}
	list, err := s.snapshots.List()
	if err != nil {
		s.log.Error("list snapshots", zap.Error(err))
		sendError(w, "Failed to list snapshots", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []storage.SnapshotInfo{}
	}
	sendSuccess(w, list)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		sendError(w, "snapshot store not configured", http.StatusNotFound)
		return
	}
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "invalid snapshot id", http.StatusBadRequest)
		return
	}
	doc, info, err := s.snapshots.Load(id)
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		sendError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("load snapshot", zap.String("id", id.String()), zap.Error(err))
		sendError(w, "Failed to load snapshot", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]any{
		"info":   info,
		"schema": json.RawMessage(doc),
	})
}

// startMetricsUpdater refreshes registry gauges until done is closed
func (s *Server) startMetricsUpdater(done <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	s.metrics.UpdateTypeCount(s.lookup.Len())
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.metrics.UpdateTypeCount(s.lookup.Len())
		}
	}
}
