package authz

import (
	"fmt"

	"worksite/bizerror"
	"worksite/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jinzhu/gorm"
)

// Family identifies one of the gated resource families.
type Family string

const (
	FamilyProject     Family = "project"
	FamilyPlan        Family = "plan"
	FamilyPlanVersion Family = "version"
	FamilyNC          Family = "nc"
	FamilyMilestone   Family = "milestone"
	FamilyStockItem   Family = "stockItem"
	FamilyTool        Family = "tool"
	FamilyMaintenance Family = "maintenance"
	FamilyInvoice     Family = "invoice"
)

// Resolution is the outcome of mapping a resource identifier to its owning
// project. Tool is attached best-effort for maintenance records.
type Resolution struct {
	ProjectID types.ID
	Resource  interface{}
	Tool      *domain.Tool
}

type familySpec struct {
	idField string
	resolve func(id types.ID, db *gorm.DB) (*Resolution, error)
}

var families = map[Family]familySpec{
	FamilyProject:     {idField: "projectId", resolve: resolveProject},
	FamilyPlan:        {idField: "planId", resolve: resolvePlan},
	FamilyPlanVersion: {idField: "versionId", resolve: resolvePlanVersion},
	FamilyNC:          {idField: "ncId", resolve: resolveNonConformity},
	FamilyMilestone:   {idField: "milestoneId", resolve: resolveMilestone},
	FamilyStockItem:   {idField: "stockItemId", resolve: resolveStockItem},
	FamilyTool:        {idField: "toolId", resolve: resolveTool},
	FamilyMaintenance: {idField: "maintenanceId", resolve: resolveMaintenance},
	FamilyInvoice:     {idField: "invoiceId", resolve: resolveInvoice},
}

// Resolve maps the request's resource identifier to the owning project.
// The identifier is taken from the path parameter, then the JSON body,
// then the query string; the first non-empty source wins.
func Resolve(c *gin.Context, family Family, db *gorm.DB) (*Resolution, error) {
	spec, found := families[family]
	if !found {
		return nil, fmt.Errorf("unknown resource family %q", family)
	}
	id, err := extractID(c, spec.idField)
	if err != nil {
		return nil, err
	}
	return spec.resolve(id, db)
}

func extractID(c *gin.Context, field string) (types.ID, error) {
	raw := c.Param(field)
	if raw == "" {
		raw = bodyField(c, field)
	}
	if raw == "" {
		raw = c.Query(field)
	}
	if raw == "" {
		return types.ID(0), bizerror.ErrMissingID
	}
	id, err := types.ParseID(raw)
	if err != nil || id.IsZero() {
		return types.ID(0), bizerror.ErrMissingID
	}
	return id, nil
}

// bodyField peeks the identifier out of a JSON body without consuming it;
// handlers can still bind the cached body afterwards.
func bodyField(c *gin.Context, field string) string {
	if c.Request == nil || c.Request.Body == nil || c.Request.ContentLength == 0 {
		return ""
	}
	body := map[string]interface{}{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return ""
	}
	value, found := body[field]
	if !found || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func resolveProject(id types.ID, db *gorm.DB) (*Resolution, error) {
	return &Resolution{ProjectID: id}, nil
}

func resolvePlan(id types.ID, db *gorm.DB) (*Resolution, error) {
	var plan domain.Plan
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&plan).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &Resolution{ProjectID: plan.ProjectID, Resource: &plan}, nil
}

func resolvePlanVersion(id types.ID, db *gorm.DB) (*Resolution, error) {
	var version domain.PlanVersion
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&version).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &Resolution{ProjectID: version.ProjectID, Resource: &version}, nil
}

func resolveNonConformity(id types.ID, db *gorm.DB) (*Resolution, error) {
	var nc domain.NonConformity
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&nc).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &Resolution{ProjectID: nc.ProjectID, Resource: &nc}, nil
}

func resolveMilestone(id types.ID, db *gorm.DB) (*Resolution, error) {
	var milestone domain.Milestone
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&milestone).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &Resolution{ProjectID: milestone.ProjectID, Resource: &milestone}, nil
}

func resolveStockItem(id types.ID, db *gorm.DB) (*Resolution, error) {
	var item domain.StockItem
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&item).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &Resolution{ProjectID: item.ProjectID, Resource: &item}, nil
}

func resolveInvoice(id types.ID, db *gorm.DB) (*Resolution, error) {
	var invoice domain.Invoice
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&invoice).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &Resolution{ProjectID: invoice.ProjectID, Resource: &invoice}, nil
}

// resolveTool is the two-hop indirection: the tool's project is the project
// of its single active assignment. A tool without an active assignment is a
// distinct failure from an unknown tool and fails closed.
func resolveTool(id types.ID, db *gorm.DB) (*Resolution, error) {
	var tool domain.Tool
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&tool).Error; err != nil {
		return nil, notFoundOr(err)
	}
	var assignment domain.ToolAssignment
	err := db.Where("tool_id = ? AND return_time = ?", tool.ID, types.Timestamp{}).First(&assignment).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrNoActiveAssignment
		}
		return nil, err
	}
	return &Resolution{ProjectID: assignment.ProjectID, Resource: &assignment, Tool: &tool}, nil
}

// resolveMaintenance treats the maintenance record's own project reference
// as authoritative; the tool is attached best-effort only.
func resolveMaintenance(id types.ID, db *gorm.DB) (*Resolution, error) {
	var maintenance domain.ToolMaintenance
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&maintenance).Error; err != nil {
		return nil, notFoundOr(err)
	}
	resolution := Resolution{ProjectID: maintenance.ProjectID, Resource: &maintenance}
	var tool domain.Tool
	if err := db.Where("id = ?", maintenance.ToolID).First(&tool).Error; err == nil {
		resolution.Tool = &tool
	}
	return &resolution, nil
}

func notFoundOr(err error) error {
	if gorm.IsRecordNotFoundError(err) {
		return bizerror.ErrNotFound
	}
	return err
}
