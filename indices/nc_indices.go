package indices

import (
	"context"
	"encoding/json"

	"worksite/authz"
	"worksite/client/es"
	"worksite/domain"
	"worksite/event"
	"worksite/persistence"
	"worksite/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const NcIndexName = "nonconformities"

var (
	SearchNcsFunc = SearchNonConformities

	indexNcFunc  = indexNonConformity
	deleteNcFunc = deleteNonConformityDoc
)

// NcDocument is the denormalized search projection of a non-conformity.
type NcDocument struct {
	ID        types.ID `json:"id"`
	ProjectID types.ID `json:"projectId"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`

	AssignedTo types.ID        `json:"assignedTo"`
	CreateTime types.Timestamp `json:"createTime"`
}

// AsEventHandler keeps the index eventually consistent with the store: it
// re-reads the record after commit and mirrors it. Index failures are
// reported to the event log only, never to the writer.
func AsEventHandler() event.EventHandler {
	return func(r *event.EventRecord) *event.EventHandleResult {
		if r.SourceType != "nc" {
			return nil
		}

		var err error
		switch r.Name {
		case event.EventNcDeleted:
			err = deleteNcFunc(r.SourceID)
		case event.EventNcCreated, event.EventNcUpdated, event.EventNcValidated:
			err = indexNcFunc(r.SourceID)
		default:
			return nil
		}

		if err != nil {
			return &event.EventHandleResult{Success: false, Message: err.Error(),
				HandlerIdentifier: "nc-indexer"}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: "nc-indexer"}
	}
}

func indexNonConformity(id types.ID) error {
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	var nc domain.NonConformity
	if err := db.Where("id = ?", id).First(&nc).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil
		}
		return err
	}
	if nc.IsDeleted {
		return deleteNonConformityDoc(id)
	}

	doc := NcDocument{
		ID: nc.ID, ProjectID: nc.ProjectID,
		Title: nc.Title, Description: nc.Description,
		Status: nc.Status, Priority: nc.Priority,
		AssignedTo: nc.AssignedTo, CreateTime: nc.CreateTime,
	}
	return es.IndexFunc(NcIndexName, nc.ID, doc, &session.Session{Context: context.Background()})
}

func deleteNonConformityDoc(id types.ID) error {
	return es.DeleteDocumentByIdFunc(NcIndexName, id, &session.Session{Context: context.Background()})
}

// SearchNonConformities runs a text search scoped to the authorized project.
func SearchNonConformities(authCtx *authz.AuthorizedContext, query string, sec *session.Session) ([]NcDocument, error) {
	must := []es.H{
		{"term": es.H{"projectId": authCtx.Project.ID}},
	}
	if query != "" {
		must = append(must, es.H{"multi_match": es.H{
			"query":  query,
			"fields": []string{"title", "description"},
		}})
	}

	result, err := es.SearchFunc(NcIndexName, es.H{"query": es.H{"bool": es.H{"must": must}}}, sec)
	if err != nil {
		return nil, err
	}

	docs := []NcDocument{}
	for _, hit := range result.Hits.Hits {
		doc := NcDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
