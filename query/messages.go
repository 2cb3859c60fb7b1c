package query

import (
	"strings"

	"github.com/goliatone/go-backend-services/core"
)

const (
	TypeGet            = "backendservices.query.get"
	TypeList           = "backendservices.query.list"
	TypeAggregatedList = "backendservices.query.aggregated_list"
	TypeGetHealth      = "backendservices.query.get_health"
)

type GetMessage struct {
	Request core.GetBackendServiceRequest
}

func (GetMessage) Type() string { return TypeGet }

func (m GetMessage) Validate() error {
	return validateTarget(m.Request.Project, m.Request.BackendService)
}

type ListMessage struct {
	Request core.ListBackendServicesRequest
}

func (ListMessage) Type() string { return TypeList }

func (m ListMessage) Validate() error {
	return validateProject(m.Request.Project)
}

type AggregatedListMessage struct {
	Request core.AggregatedListBackendServicesRequest
}

func (AggregatedListMessage) Type() string { return TypeAggregatedList }

func (m AggregatedListMessage) Validate() error {
	return validateProject(m.Request.Project)
}

type GetHealthMessage struct {
	Request core.GetHealthBackendServiceRequest
}

func (GetHealthMessage) Type() string { return TypeGetHealth }

func (m GetHealthMessage) Validate() error {
	if err := validateTarget(m.Request.Project, m.Request.BackendService); err != nil {
		return err
	}
	if m.Request.ResourceGroupReferenceResource == nil || strings.TrimSpace(m.Request.ResourceGroupReferenceResource.Group) == "" {
		return queryValidationError("resource_group_reference_resource.group", "instance group is required")
	}
	return nil
}

func validateProject(project string) error {
	if strings.TrimSpace(project) == "" {
		return queryValidationError("project", "project is required")
	}
	return nil
}

func validateTarget(project string, backendService string) error {
	if err := validateProject(project); err != nil {
		return err
	}
	if strings.TrimSpace(backendService) == "" {
		return queryValidationError("backend_service", "backend service is required")
	}
	return nil
}
