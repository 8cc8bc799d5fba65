// Package mongo implements a course catalog on MongoDB.
//
// Each course is one document in the "courses" collection, keyed by its
// normalized code. Requirement trees are embedded in wire format.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/observability"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// Collection is the default collection name.
const Collection = "courses"

type courseDoc struct {
	Code                   string            `bson:"_id"`
	Department             string            `bson:"department,omitempty"`
	Title                  string            `bson:"title,omitempty"`
	Description            string            `bson:"description,omitempty"`
	Units                  *unitsDoc         `bson:"units,omitempty"`
	Prerequisites          *requirement.Wire `bson:"prerequisites,omitempty"`
	Corequisites           *requirement.Wire `bson:"corequisites,omitempty"`
	Notes                  *requirement.Wire `bson:"notes,omitempty"`
	FlattenedPrerequisites []string          `bson:"flattened_prerequisites,omitempty"`
	FlattenedCorequisites  []string          `bson:"flattened_corequisites,omitempty"`
}

type unitsDoc struct {
	Credits  float64 `bson:"credits"`
	FeeIndex float64 `bson:"fee_index,omitempty"`
	Term     string  `bson:"term,omitempty"`
}

// Catalog reads courses from a MongoDB collection.
type Catalog struct {
	coll *mongo.Collection
}

// New wraps an existing collection.
func New(coll *mongo.Collection) *Catalog {
	return &Catalog{coll: coll}
}

// Open connects to uri and returns a catalog over database/[Collection].
// The caller disconnects the returned client.
func Open(ctx context.Context, uri, database string) (*Catalog, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	return New(client.Database(database).Collection(Collection)), client, nil
}

// Course implements [catalog.Catalog].
func (c *Catalog) Course(ctx context.Context, code string) (course *catalog.Course, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if course != nil {
			n = 1
		}
		observability.Catalog().OnLookup(ctx, "mongo", n, time.Since(start), err)
	}()

	var doc courseDoc
	err = c.coll.FindOne(ctx, bson.M{"_id": requirement.NormalizeCode(code)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	return fromDoc(&doc)
}

// Courses implements [catalog.Catalog] with a single $in query.
func (c *Catalog) Courses(ctx context.Context, codes []string) (out map[string]*catalog.Course, err error) {
	ids := make([]string, 0, len(codes))
	for _, code := range codes {
		if id := requirement.NormalizeCode(code); id != "" {
			ids = append(ids, id)
		}
	}
	out = make(map[string]*catalog.Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	start := time.Now()
	defer func() {
		observability.Catalog().OnLookup(ctx, "mongo", len(out), time.Since(start), err)
	}()

	cur, err := c.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	var docs []courseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for i := range docs {
		course, err := fromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		out[course.ID()] = course
	}
	return out, nil
}

// Upsert replaces courses by code in one bulk write.
func (c *Catalog) Upsert(ctx context.Context, courses []*catalog.Course) error {
	if len(courses) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(courses))
	for _, course := range courses {
		doc := toDoc(course)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.Code}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	_, err := c.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func fromDoc(doc *courseDoc) (*catalog.Course, error) {
	reqs, err := catalog.RequirementsFromWire(doc.Prerequisites, doc.Corequisites, doc.Notes)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", doc.Code, err)
	}
	course := &catalog.Course{
		Department:             doc.Department,
		Code:                   doc.Code,
		Title:                  doc.Title,
		Description:            doc.Description,
		Requirements:           reqs,
		FlattenedPrerequisites: doc.FlattenedPrerequisites,
		FlattenedCorequisites:  doc.FlattenedCorequisites,
	}
	if doc.Units != nil {
		course.Units = &catalog.Units{Credits: doc.Units.Credits, FeeIndex: doc.Units.FeeIndex, Term: doc.Units.Term}
	}
	return course, nil
}

func toDoc(c *catalog.Course) *courseDoc {
	doc := &courseDoc{
		Code:                   c.ID(),
		Department:             c.Department,
		Title:                  c.Title,
		Description:            c.Description,
		Prerequisites:          requirement.ToWire(c.Requirements.Prerequisites),
		Corequisites:           requirement.ToWire(c.Requirements.Corequisites),
		Notes:                  requirement.ToWire(c.Requirements.Notes),
		FlattenedPrerequisites: c.FlattenedPrerequisites,
		FlattenedCorequisites:  c.FlattenedCorequisites,
	}
	if c.Units != nil {
		doc.Units = &unitsDoc{Credits: c.Units.Credits, FeeIndex: c.Units.FeeIndex, Term: c.Units.Term}
	}
	return doc
}

var _ catalog.Catalog = (*Catalog)(nil)
