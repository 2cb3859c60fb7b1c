package command

import (
	"github.com/goliatone/go-backend-services/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[AddSignedURLKeyMessage]    = (*AddSignedURLKeyCommand)(nil)
	_ gocmd.Commander[DeleteMessage]             = (*DeleteCommand)(nil)
	_ gocmd.Commander[DeleteSignedURLKeyMessage] = (*DeleteSignedURLKeyCommand)(nil)
	_ gocmd.Commander[InsertMessage]             = (*InsertCommand)(nil)
	_ gocmd.Commander[PatchMessage]              = (*PatchCommand)(nil)
	_ gocmd.Commander[SetSecurityPolicyMessage]  = (*SetSecurityPolicyCommand)(nil)
	_ gocmd.Commander[UpdateMessage]             = (*UpdateCommand)(nil)

	_ MutatingTransport = (*core.Transport)(nil)
)
