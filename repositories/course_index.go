package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/CPU-commits/Intranet_BCourses/db"
	"github.com/CPU-commits/Intranet_BCourses/models"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

const COURSES_INDEX = "courses"

// Max hits returned by a search
const SEARCH_SIZE = 50

// ElasticSearch Struct - Course content
type CourseDocument struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Teacher     string `json:"teacher"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

type CourseSearchIndex struct {
	es     *elasticsearch.Client
	bulk   esutil.BulkIndexer
	logger *zap.Logger
}

func (i *CourseSearchIndex) IndexCourse(ctx context.Context, course *models.Course) error {
	data, err := json.Marshal(CourseDocument{
		Title:       course.Title,
		Description: course.Description,
		Level:       course.Level,
		Teacher:     course.Teacher.Hex(),
	})
	if err != nil {
		return err
	}
	return i.bulk.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		DocumentID: course.ID.Hex(),
		Body:       bytes.NewReader(data),
		OnFailure:  i.onFailure,
	})
}

func (i *CourseSearchIndex) DeleteCourse(ctx context.Context, idCourse string) error {
	return i.bulk.Add(ctx, esutil.BulkIndexerItem{
		Action:     "delete",
		DocumentID: idCourse,
		OnFailure:  i.onFailure,
	})
}

func (i *CourseSearchIndex) onFailure(
	ctx context.Context,
	item esutil.BulkIndexerItem,
	res esutil.BulkIndexerResponseItem,
	err error,
) {
	if err != nil {
		i.logger.Error("bulk item failed", zap.String("course", item.DocumentID), zap.Error(err))
		return
	}
	i.logger.Error(
		"bulk item rejected",
		zap.String("course", item.DocumentID),
		zap.String("type", res.Error.Type),
		zap.String("reason", res.Error.Reason),
	)
}

func (i *CourseSearchIndex) Search(ctx context.Context, q string) ([]string, error) {
	quoted, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	query := db.ConstructQuery(fmt.Sprintf(
		`"multi_match": {"query": %s, "fields": ["title^2", "description", "level"], "fuzziness": "AUTO"}`,
		quoted,
	))
	response, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(COURSES_INDEX),
		i.es.Search.WithBody(query),
		i.es.Search.WithSize(SEARCH_SIZE),
	)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	// Nothing indexed yet
	if response.StatusCode == http.StatusNotFound {
		return []string{}, nil
	}
	if response.IsError() {
		return nil, fmt.Errorf("search failed: %s", response.String())
	}

	var hits searchResponse
	if err := json.NewDecoder(response.Body).Decode(&hits); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(hits.Hits.Hits))
	for _, hit := range hits.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (i *CourseSearchIndex) Close(ctx context.Context) error {
	return i.bulk.Close(ctx)
}

func NewCourseSearchIndex(es *elasticsearch.Client, logger *zap.Logger) (*CourseSearchIndex, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         COURSES_INDEX,
		Client:        es,
		NumWorkers:    db.NUM_WORKERS,
		FlushBytes:    int(db.FLUSH_BYTES),
		FlushInterval: db.FLUSH_INTERVAL,
		OnError: func(ctx context.Context, err error) {
			logger.Error("bulk indexer", zap.Error(err))
		},
	})
	if err != nil {
		return nil, err
	}
	return &CourseSearchIndex{
		es:     es,
		bulk:   bi,
		logger: logger,
	}, nil
}

// Used when no search cluster is configured
type NoopCourseIndex struct{}

func (NoopCourseIndex) IndexCourse(ctx context.Context, course *models.Course) error {
	return nil
}

func (NoopCourseIndex) DeleteCourse(ctx context.Context, idCourse string) error {
	return nil
}

func (NoopCourseIndex) Search(ctx context.Context, q string) ([]string, error) {
	return nil, ErrSearchUnavailable
}

func (NoopCourseIndex) Close(ctx context.Context) error {
	return nil
}
