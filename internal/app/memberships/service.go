package memberships

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

// Service is the form layer in front of the record store. It validates raw
// input, then calls the store; the store itself never rejects a request.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) CreateMembership(ctx context.Context, in CreateMembershipInput) (domain.Membership, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return domain.Membership{}, validationError("name", "must be non-empty")
	}
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return domain.Membership{}, validationError("number", "must be non-empty")
	}
	typ, ok := domain.ParseMembershipType(in.Type)
	if !ok {
		return domain.Membership{}, validationError("type", "must be one of airline, hotel, cruise, other")
	}
	website, err := normalizeWebsiteInput(in.Website)
	if err != nil {
		return domain.Membership{}, validationError("website", err.Error())
	}

	return s.store.Create(ctx, CreateInput{
		Name:    name,
		Number:  number,
		Type:    typ,
		Tier:    optionalText(in.Tier),
		Website: website,
		Notes:   optionalText(in.Notes),
	}), nil
}

func (s *Service) UpdateMembership(ctx context.Context, id domain.MembershipID, in UpdateMembershipInput) (domain.Membership, error) {
	var p Patch

	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return domain.Membership{}, validationError("name", "cannot be null")
		}
		name := domain.NormalizeHumanName(in.Name.Value())
		if name == "" {
			return domain.Membership{}, validationError("name", "must be non-empty")
		}
		p.Name = Some(name)
	}

	if in.Number.IsSpecified() {
		if in.Number.IsNull() {
			return domain.Membership{}, validationError("number", "cannot be null")
		}
		number := strings.TrimSpace(in.Number.Value())
		if number == "" {
			return domain.Membership{}, validationError("number", "must be non-empty")
		}
		p.Number = Some(number)
	}

	if in.Type.IsSpecified() {
		if in.Type.IsNull() {
			return domain.Membership{}, validationError("type", "cannot be null")
		}
		typ, ok := domain.ParseMembershipType(in.Type.Value())
		if !ok {
			return domain.Membership{}, validationError("type", "must be one of airline, hotel, cruise, other")
		}
		p.Type = Some(typ)
	}

	p.Tier = optionalTextPatch(in.Tier)
	p.Notes = optionalTextPatch(in.Notes)

	if in.Website.IsSpecified() {
		if in.Website.IsNull() {
			p.Website = Null[string]()
		} else {
			website, err := normalizeWebsiteInput(in.Website.Value())
			if err != nil {
				return domain.Membership{}, validationError("website", err.Error())
			}
			if website == nil {
				p.Website = Null[string]()
			} else {
				p.Website = Some(*website)
			}
		}
	}

	m, ok := s.store.Update(ctx, id, p)
	if !ok {
		return domain.Membership{}, notFoundError()
	}
	return m, nil
}

func (s *Service) GetMembership(ctx context.Context, id domain.MembershipID) (domain.Membership, error) {
	m, ok := s.store.Get(ctx, id)
	if !ok {
		return domain.Membership{}, notFoundError()
	}
	return m, nil
}

func (s *Service) DeleteMembership(ctx context.Context, id domain.MembershipID) error {
	if !s.store.Delete(ctx, id) {
		return notFoundError()
	}
	return nil
}

// SearchMemberships returns the filtered, newest-first view.
func (s *Service) SearchMemberships(ctx context.Context, term string, category string) ([]domain.Membership, error) {
	c, ok := ParseCategory(category)
	if !ok {
		return nil, validationError("type", "must be one of all, airline, hotel, cruise, other")
	}
	return s.store.Search(ctx, Query{Term: term, Category: c}), nil
}

// IsNotFound reports whether err is a not-found application error.
func IsNotFound(err error) bool {
	ae := (*Error)(nil)
	if errors.As(err, &ae) {
		return ae.Code == CodeNotFound
	}
	return false
}

var explicitScheme = regexp.MustCompile(`^(?i)([a-z][a-z0-9+.-]*)://`)

// normalizeWebsiteInput returns nil for blank input, and otherwise the
// website with a scheme, provided it parses as an absolute http(s) URL.
func normalizeWebsiteInput(raw string) (*string, error) {
	website := domain.NormalizeWebsite(raw)
	if website == "" {
		return nil, nil
	}
	if m := explicitScheme.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		switch strings.ToLower(m[1]) {
		case "http", "https":
		default:
			return nil, errors.New("must be an http or https URL")
		}
	}
	if strings.ContainsAny(website, " \t\r\n") {
		return nil, errors.New("must be a valid URL")
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" || u.User != nil {
		return nil, errors.New("must be a valid URL")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, errors.New("must be an http or https URL")
	}
	return &website, nil
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// optionalTextPatch maps a blank value to null so clearing a form field clears the record field.
func optionalTextPatch(o Optional[string]) Optional[string] {
	if !o.IsSpecified() || o.IsNull() {
		return o
	}
	v := strings.TrimSpace(o.Value())
	if v == "" {
		return Null[string]()
	}
	return Some(v)
}
