package tsapi

import (
	"github.com/chronicl/ts-api/internal/models"
	"github.com/chronicl/ts-api/internal/utils"
)

// Method is one of the nine HTTP methods a route can be declared with
type Method = models.Method

const (
	GET     = models.MethodGet
	POST    = models.MethodPost
	PUT     = models.MethodPut
	DELETE  = models.MethodDelete
	HEAD    = models.MethodHead
	OPTIONS = models.MethodOptions
	CONNECT = models.MethodConnect
	PATCH   = models.MethodPatch
	TRACE   = models.MethodTrace
)

// ParseMethod parses a method name in any letter case
func ParseMethod(s string) (Method, error) {
	return models.ParseMethod(s)
}

type (
	ExtractorKind   = models.ExtractorKind
	TypeDescriptor  = models.TypeDescriptor
	ParameterEntry  = models.ParameterEntry
	RouteDescriptor = models.RouteDescriptor
	GeneratedModule = models.GeneratedModule
	ClientExport    = models.ClientExport
	ExportFile      = models.ExportFile
)

const (
	KindOpaque = models.KindOpaque
	KindBody   = models.KindBody
	KindPath   = models.KindPath
	KindQuery  = models.KindQuery
)

// DiagnosticLevel controls how much the builder reports
type DiagnosticLevel = utils.DiagnosticLevel

const (
	LogSilent  = utils.DiagnosticSilent
	LogError   = utils.DiagnosticError
	LogWarn    = utils.DiagnosticWarn
	LogInfo    = utils.DiagnosticInfo
	LogVerbose = utils.DiagnosticVerbose
	LogDebug   = utils.DiagnosticDebug
)
