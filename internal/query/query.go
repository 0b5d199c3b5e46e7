// Package query turns list-endpoint parameters into an ordered, offset-limited
// GORM query. The same options drive the users, posts and comments lists.
package query

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"inkwell/internal/apperror"
)

// Table identifies which entity a list runs against.
type Table string

const (
	Users    Table = "users"
	Posts    Table = "posts"
	Comments Table = "comments"
)

// Direction is the sort direction of a list.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	DefaultLimit = 9
	// LastMonthWindow is the lookback used for lastMonthCount.
	LastMonthWindow = 30 * 24 * time.Hour
)

// Filters enumerates the supported equality predicates. Empty fields are not
// applied.
type Filters struct {
	UserID   string
	Category string
	Slug     string
	PostID   string
}

// Options is the parsed form of a list request.
type Options struct {
	StartIndex int
	Limit      int
	Direction  Direction
	Filters    Filters
	SearchTerm string
}

// Defaults returns the options used when a request carries no parameters.
func Defaults() Options {
	return Options{Limit: DefaultLimit, Direction: Desc}
}

// sortParam is the query key selecting ascending order; posts historically
// use "order", the other lists "sort".
func sortParam(t Table) string {
	if t == Posts {
		return "order"
	}
	return "sort"
}

// SortColumn is the timestamp a table's list is ordered by.
func SortColumn(t Table) string {
	if t == Posts {
		return "updated_at"
	}
	return "created_at"
}

// Parse reads list parameters for table. Keys it does not know are ignored.
func Parse(t Table, params map[string]string) (Options, error) {
	opts := Defaults()

	if raw := strings.TrimSpace(params["startIndex"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Options{}, apperror.ValidationFailed("startIndex", "startIndex must be an integer")
		}
		opts.StartIndex = n
	}
	if raw := strings.TrimSpace(params["limit"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Options{}, apperror.ValidationFailed("limit", "limit must be an integer")
		}
		opts.Limit = n
	}
	if strings.EqualFold(params[sortParam(t)], string(Asc)) {
		opts.Direction = Asc
	}

	opts.Filters = Filters{
		UserID:   strings.TrimSpace(params["userId"]),
		Category: strings.TrimSpace(params["category"]),
		Slug:     strings.TrimSpace(params["slug"]),
		PostID:   strings.TrimSpace(params["postId"]),
	}
	if t == Posts {
		opts.SearchTerm = strings.TrimSpace(params["searchTerm"])
	}

	return opts.Normalize(), nil
}

// Normalize clamps paging values into range.
func (o Options) Normalize() Options {
	if o.StartIndex < 0 {
		o.StartIndex = 0
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Direction != Asc {
		o.Direction = Desc
	}
	return o
}

// Where applies the filter predicates of o that make sense for table.
func (o Options) Where(t Table) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		f := o.Filters
		switch t {
		case Posts:
			if f.UserID != "" {
				db = db.Where("user_id = ?", f.UserID)
			}
			if f.Category != "" {
				db = db.Where("category = ?", f.Category)
			}
			if f.Slug != "" {
				db = db.Where("slug = ?", f.Slug)
			}
			if f.PostID != "" {
				db = db.Where("id = ?", f.PostID)
			}
			if o.SearchTerm != "" {
				pattern := "%" + escapeLike(strings.ToLower(o.SearchTerm)) + "%"
				db = db.Where(searchCondition(db.Dialector.Name()), pattern, pattern)
			}
		case Comments:
			if f.PostID != "" {
				db = db.Where("post_id = ?", f.PostID)
			}
			if f.UserID != "" {
				db = db.Where("user_id = ?", f.UserID)
			}
		}
		return db
	}
}

// Page applies filters, ordering and offset/limit for table.
func (o Options) Page(t Table) func(*gorm.DB) *gorm.DB {
	o = o.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(o.Where(t)).
			Order(SortColumn(t) + " " + string(o.Direction)).
			Offset(o.StartIndex).
			Limit(o.Limit)
	}
}

// LastMonthCutoff is the created_at lower bound for lastMonthCount.
func LastMonthCutoff(now time.Time) time.Time {
	return now.Add(-LastMonthWindow)
}

// searchCondition matches title or content case-insensitively. SQLite's
// LOWER only folds ASCII, so non-ASCII titles match case-sensitively there.
func searchCondition(dialect string) string {
	if dialect == "postgres" {
		return `(title ILIKE ? ESCAPE '\' OR content ILIKE ? ESCAPE '\')`
	}
	return `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
