package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/usecase"
	"github.com/spf13/cobra"
)

// actorFlag carries the value of the persistent --as flag to subcommands.
type actorFlag struct {
	ref *string
}

// resolve returns the acting user. --as wins over [actor] default.
func (a *actorFlag) resolve(cmd *cobra.Command, c *app.Container) (domain.Actor, error) {
	ref := ""
	if a != nil && a.ref != nil {
		ref = *a.ref
	}
	if ref == "" && c.Config.App != nil {
		ref = c.Config.App.Actor.Default
	}

	out, err := c.ResolveActorUseCase().Execute(cmd.Context(), usecase.ResolveActorInput{Ref: ref})
	if err != nil {
		return domain.Actor{}, err
	}
	return out.Actor, nil
}

// parseTaskID parses a task ID string (with or without # prefix).
func parseTaskID(s string) (int64, error) {
	s = strings.TrimPrefix(s, "#")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task ID %q", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid task ID %q", s)
	}
	return id, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
	}
	return t, nil
}
