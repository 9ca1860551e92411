package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime"

	"github.com/Overland-East-Bay/membership-tracker/internal/app/memberships"
	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/i18n"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/clock"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/idempotency"
)

const maxBodyBytes = 1 << 20

const routeMemberships = "/memberships"

// Server holds the HTTP handlers for the membership API.
type Server struct {
	Memberships *memberships.Service
	Idem        idempotency.Store
	Clock       clock.Clock
	Logger      *slog.Logger
}

func NewServer(svc *memberships.Service, idem idempotency.Store, clk clock.Clock, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Memberships: svc,
		Idem:        idem,
		Clock:       clk,
		Logger:      logger,
	}
}

func (s *Server) ListMemberships(w http.ResponseWriter, r *http.Request) {
	var q, typ string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, r, http.StatusBadRequest, codeValidation, "invalid query parameter q", map[string]any{"q": err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "type", r.URL.Query(), &typ); err != nil {
		writeError(w, r, http.StatusBadRequest, codeValidation, "invalid query parameter type", map[string]any{"type": err.Error()})
		return
	}

	ms, err := s.Memberships.SearchMemberships(r.Context(), q, typ)
	if err != nil {
		writeAppError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ListMembershipsResponse{Memberships: membershipsFromDomain(ms)})
}

func (s *Server) CreateMembership(w http.ResponseWriter, r *http.Request) {
	var body CreateMembershipRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	ctx := r.Context()

	// Idempotency handling:
	// - Replay if same key+route+bodyHash
	// - Reject if same key+route with different bodyHash (409)
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	var bodyHash string
	if idemKey != "" && s.Idem != nil {
		h, err := hashJSON(body)
		if err != nil {
			writeAppError(w, r, s.Logger, err)
			return
		}
		bodyHash = h

		metaFP := idempotency.Fingerprint{
			Key:      idempotency.Key(idemKey),
			Method:   http.MethodPost,
			Route:    routeMemberships,
			BodyHash: "",
		}
		if meta, ok, err := s.Idem.Get(ctx, metaFP); err != nil {
			writeAppError(w, r, s.Logger, err)
			return
		} else if ok {
			if string(meta.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, codeIdempotencyKeyReuse, "idempotency key reuse with different payload", nil)
				return
			}
		} else {
			_ = s.Idem.Put(ctx, metaFP, idempotency.Record{
				StatusCode:  0,
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   s.Clock.Now().UTC(),
			})
		}

		respFP := metaFP
		respFP.BodyHash = bodyHash
		if rec, ok, err := s.Idem.Get(ctx, respFP); err != nil {
			writeAppError(w, r, s.Logger, err)
			return
		} else if ok && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
			w.Header().Set("Content-Type", rec.ContentType)
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	in := memberships.CreateMembershipInput{
		Name:    body.Name,
		Number:  body.Number,
		Type:    derefString(body.Type),
		Tier:    derefString(body.Tier),
		Website: derefString(body.Website),
		Notes:   derefString(body.Notes),
	}
	m, err := s.Memberships.CreateMembership(ctx, in)
	if err != nil {
		writeAppError(w, r, s.Logger, err)
		return
	}

	resp := MembershipResponse{Membership: membershipFromDomain(m)}
	w.Header().Set("Location", routeMemberships+"/"+string(m.ID))

	if bodyHash != "" {
		respFP := idempotency.Fingerprint{
			Key:      idempotency.Key(idemKey),
			Method:   http.MethodPost,
			Route:    routeMemberships,
			BodyHash: bodyHash,
		}
		if b, err := json.Marshal(resp); err == nil {
			_ = s.Idem.Put(ctx, respFP, idempotency.Record{
				StatusCode:  http.StatusCreated,
				ContentType: "application/json",
				Body:        b,
				CreatedAt:   s.Clock.Now().UTC(),
			})
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) GetMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bindMembershipID(w, r)
	if !ok {
		return
	}
	m, err := s.Memberships.GetMembership(r.Context(), id)
	if err != nil {
		writeAppError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MembershipResponse{Membership: membershipFromDomain(m)})
}

func (s *Server) UpdateMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bindMembershipID(w, r)
	if !ok {
		return
	}
	var body UpdateMembershipRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	m, err := s.Memberships.UpdateMembership(r.Context(), id, updateMembershipInputFromRequest(body))
	if err != nil {
		writeAppError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MembershipResponse{Membership: membershipFromDomain(m)})
}

func (s *Server) DeleteMembership(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bindMembershipID(w, r)
	if !ok {
		return
	}
	if err := s.Memberships.DeleteMembership(r.Context(), id); err != nil {
		writeAppError(w, r, s.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLabels returns category and UI labels. The lang query parameter wins
// over Accept-Language.
func (s *Server) GetLabels(w http.ResponseWriter, r *http.Request) {
	var lang string
	if err := runtime.BindQueryParameter("form", true, false, "lang", r.URL.Query(), &lang); err != nil {
		writeError(w, r, http.StatusBadRequest, codeValidation, "invalid query parameter lang", map[string]any{"lang": err.Error()})
		return
	}
	if strings.TrimSpace(lang) == "" {
		lang = r.Header.Get("Accept-Language")
	}
	labels := i18n.Negotiate(lang)
	w.Header().Set("Content-Language", labels.Locale.String())
	writeJSON(w, http.StatusOK, LabelsResponse{
		Locale:     labels.Locale.String(),
		Categories: labels.Categories(),
		Messages:   labels.Messages(),
	})
}

func (s *Server) bindMembershipID(w http.ResponseWriter, r *http.Request) (domain.MembershipID, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "membershipId", chi.URLParam(r, "membershipId"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || strings.TrimSpace(id) == "" {
		writeError(w, r, http.StatusBadRequest, codeValidation, "invalid path parameter membershipId", nil)
		return "", false
	}
	return domain.MembershipID(id), true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeError(w, r, http.StatusUnsupportedMediaType, codeUnsupportedMediaType, "request body must be application/json", nil)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "missing request body"
		}
		writeError(w, r, http.StatusBadRequest, codeInvalidJSON, msg, map[string]any{"body": err.Error()})
		return false
	}
	if dec.More() {
		writeError(w, r, http.StatusBadRequest, codeInvalidJSON, "request body must hold a single JSON object", nil)
		return false
	}
	return true
}

func hashJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func updateMembershipInputFromRequest(b UpdateMembershipRequest) memberships.UpdateMembershipInput {
	return memberships.UpdateMembershipInput{
		Name:    optionalStringFromNullable(b.Name),
		Number:  optionalStringFromNullable(b.Number),
		Type:    optionalStringFromNullable(b.Type),
		Tier:    optionalStringFromNullable(b.Tier),
		Website: optionalStringFromNullable(b.Website),
		Notes:   optionalStringFromNullable(b.Notes),
	}
}

func optionalStringFromNullable(n nullable.Nullable[string]) memberships.Optional[string] {
	if !n.IsSpecified() {
		return memberships.Unspecified[string]()
	}
	if n.IsNull() {
		return memberships.Null[string]()
	}
	v, err := n.Get()
	if err != nil {
		return memberships.Unspecified[string]()
	}
	return memberships.Some(v)
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
