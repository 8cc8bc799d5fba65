// Package postgres implements a course catalog on PostgreSQL.
//
// Requirement trees are stored as JSONB in their wire format, and flattened
// requirement lists as text arrays. See [Schema] for the table layout.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/observability"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// Schema creates the courses table.
const Schema = `CREATE TABLE IF NOT EXISTS courses (
	code                    text PRIMARY KEY,
	department              text NOT NULL DEFAULT '',
	title                   text NOT NULL DEFAULT '',
	description             text NOT NULL DEFAULT '',
	units                   jsonb,
	requirements            jsonb,
	flattened_prerequisites text[] NOT NULL DEFAULT '{}',
	flattened_corequisites  text[] NOT NULL DEFAULT '{}'
)`

const selectColumns = `SELECT code, department, title, description, units, requirements, flattened_prerequisites, flattened_corequisites FROM courses`

const selectCourse = selectColumns + ` WHERE code = $1`
const selectCourses = selectColumns + ` WHERE code = ANY($1)`

const upsertCourse = `INSERT INTO courses (code, department, title, description, units, requirements, flattened_prerequisites, flattened_corequisites)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (code) DO UPDATE SET department=EXCLUDED.department, title=EXCLUDED.title, description=EXCLUDED.description,
units=EXCLUDED.units, requirements=EXCLUDED.requirements,
flattened_prerequisites=EXCLUDED.flattened_prerequisites, flattened_corequisites=EXCLUDED.flattened_corequisites`

// Querier is the subset of *pgxpool.Pool the catalog uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Catalog reads courses from PostgreSQL.
type Catalog struct {
	db Querier
	// Strict rejects malformed requirement nodes instead of decoding them
	// as empty groups.
	Strict bool
}

// New wraps an existing pool or connection.
func New(db Querier) *Catalog {
	return &Catalog{db: db}
}

// Open connects to the database at dsn and verifies the connection.
// The caller closes the returned pool.
func Open(ctx context.Context, dsn string) (*Catalog, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	return New(pool), pool, nil
}

// Migrate creates the schema if it does not exist.
func (c *Catalog) Migrate(ctx context.Context) error {
	_, err := c.db.Exec(ctx, Schema)
	return err
}

// Course implements [catalog.Catalog].
func (c *Catalog) Course(ctx context.Context, code string) (*catalog.Course, error) {
	found, err := c.query(ctx, selectCourse, requirement.NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// Courses implements [catalog.Catalog] with a single round trip.
func (c *Catalog) Courses(ctx context.Context, codes []string) (map[string]*catalog.Course, error) {
	ids := make([]string, 0, len(codes))
	for _, code := range codes {
		if id := requirement.NormalizeCode(code); id != "" {
			ids = append(ids, id)
		}
	}
	out := make(map[string]*catalog.Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := c.query(ctx, selectCourses, ids)
	if err != nil {
		return nil, err
	}
	for _, course := range found {
		out[course.ID()] = course
	}
	return out, nil
}

func (c *Catalog) query(ctx context.Context, sql string, arg any) (courses []*catalog.Course, err error) {
	start := time.Now()
	defer func() {
		observability.Catalog().OnLookup(ctx, "postgres", len(courses), time.Since(start), err)
	}()

	rows, err := c.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	defer rows.Close()

	opts := requirement.DecodeOptions{Strict: c.Strict}
	for rows.Next() {
		var (
			course       catalog.Course
			units        []byte
			requirements []byte
		)
		if err := rows.Scan(&course.Code, &course.Department, &course.Title, &course.Description,
			&units, &requirements, &course.FlattenedPrerequisites, &course.FlattenedCorequisites); err != nil {
			return nil, err
		}
		if len(units) > 0 && string(units) != "null" {
			course.Units = new(catalog.Units)
			if err := json.Unmarshal(units, course.Units); err != nil {
				return nil, fmt.Errorf("course %s: units: %w", course.Code, err)
			}
		}
		if course.Requirements, err = catalog.DecodeRequirements(requirements, opts); err != nil {
			return nil, fmt.Errorf("course %s: %w", course.Code, err)
		}
		courses = append(courses, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

// Upsert writes courses in one batch, replacing existing rows by code.
func (c *Catalog) Upsert(ctx context.Context, courses []*catalog.Course) error {
	if len(courses) == 0 {
		return nil
	}

	batch := pgx.Batch{}
	for _, course := range courses {
		var units []byte
		if course.Units != nil {
			var err error
			if units, err = json.Marshal(course.Units); err != nil {
				return err
			}
		}
		reqs, err := json.Marshal(course.Requirements)
		if err != nil {
			return fmt.Errorf("course %s: %w", course.ID(), err)
		}
		batch.Queue(upsertCourse, course.ID(), course.Department, course.Title, course.Description,
			units, reqs, nonNil(course.FlattenedPrerequisites), nonNil(course.FlattenedCorequisites))
	}
	return c.db.SendBatch(ctx, &batch).Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ catalog.Catalog = (*Catalog)(nil)
