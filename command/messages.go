package command

import (
	"strings"

	"github.com/goliatone/go-backend-services/core"
)

const (
	TypeAddSignedURLKey    = "backendservices.command.signed_url_key.add"
	TypeDelete             = "backendservices.command.delete"
	TypeDeleteSignedURLKey = "backendservices.command.signed_url_key.delete"
	TypeInsert             = "backendservices.command.insert"
	TypePatch              = "backendservices.command.patch"
	TypeSetSecurityPolicy  = "backendservices.command.security_policy.set"
	TypeUpdate             = "backendservices.command.update"
)

type AddSignedURLKeyMessage struct {
	Request core.AddSignedURLKeyBackendServiceRequest
}

func (AddSignedURLKeyMessage) Type() string { return TypeAddSignedURLKey }

func (m AddSignedURLKeyMessage) Validate() error {
	if err := validateTarget(m.Request.Project, m.Request.BackendService); err != nil {
		return err
	}
	if m.Request.SignedURLKeyResource == nil || strings.TrimSpace(m.Request.SignedURLKeyResource.KeyName) == "" {
		return commandValidationError("signed_url_key_resource.key_name", "key name is required")
	}
	return nil
}

type DeleteMessage struct {
	Request core.DeleteBackendServiceRequest
}

func (DeleteMessage) Type() string { return TypeDelete }

func (m DeleteMessage) Validate() error {
	return validateTarget(m.Request.Project, m.Request.BackendService)
}

type DeleteSignedURLKeyMessage struct {
	Request core.DeleteSignedURLKeyBackendServiceRequest
}

func (DeleteSignedURLKeyMessage) Type() string { return TypeDeleteSignedURLKey }

func (m DeleteSignedURLKeyMessage) Validate() error {
	if err := validateTarget(m.Request.Project, m.Request.BackendService); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.KeyName) == "" {
		return commandValidationError("key_name", "key name is required")
	}
	return nil
}

type InsertMessage struct {
	Request core.InsertBackendServiceRequest
}

func (InsertMessage) Type() string { return TypeInsert }

func (m InsertMessage) Validate() error {
	if err := validateProject(m.Request.Project); err != nil {
		return err
	}
	if m.Request.BackendServiceResource == nil || strings.TrimSpace(m.Request.BackendServiceResource.Name) == "" {
		return commandValidationError("backend_service_resource.name", "backend service name is required")
	}
	return nil
}

type PatchMessage struct {
	Request core.PatchBackendServiceRequest
}

func (PatchMessage) Type() string { return TypePatch }

func (m PatchMessage) Validate() error {
	if err := validateTarget(m.Request.Project, m.Request.BackendService); err != nil {
		return err
	}
	if m.Request.BackendServiceResource == nil {
		return commandValidationError("backend_service_resource", "patch resource is required")
	}
	return nil
}

type SetSecurityPolicyMessage struct {
	Request core.SetSecurityPolicyBackendServiceRequest
}

func (SetSecurityPolicyMessage) Type() string { return TypeSetSecurityPolicy }

// Validate allows an empty security policy, which detaches the current one.
func (m SetSecurityPolicyMessage) Validate() error {
	return validateTarget(m.Request.Project, m.Request.BackendService)
}

type UpdateMessage struct {
	Request core.UpdateBackendServiceRequest
}

func (UpdateMessage) Type() string { return TypeUpdate }

func (m UpdateMessage) Validate() error {
	if err := validateTarget(m.Request.Project, m.Request.BackendService); err != nil {
		return err
	}
	if m.Request.BackendServiceResource == nil {
		return commandValidationError("backend_service_resource", "backend service resource is required")
	}
	return nil
}

func validateProject(project string) error {
	if strings.TrimSpace(project) == "" {
		return commandValidationError("project", "project is required")
	}
	return nil
}

func validateTarget(project string, backendService string) error {
	if err := validateProject(project); err != nil {
		return err
	}
	if strings.TrimSpace(backendService) == "" {
		return commandValidationError("backend_service", "backend service is required")
	}
	return nil
}
