package membership

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/Overland-East-Bay/membership-tracker/internal/app/memberships"
)

// describe flattens application error details into a one-line message.
func describe(err error) error {
	var ae *memberships.Error
	if !errors.As(err, &ae) || len(ae.Details) == 0 {
		return err
	}
	keys := make([]string, 0, len(ae.Details))
	for k := range ae.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %v", k, ae.Details[k]))
	}
	return errors.Errorf("%s: %s", ae.Message, strings.Join(parts, ", "))
}

// describeFor is describe for commands addressing one record by id.
func describeFor(id string, err error) error {
	if memberships.IsNotFound(err) {
		return errors.Errorf("no membership with id %q, run \"memberships list\" to see ids", id)
	}
	return describe(err)
}
