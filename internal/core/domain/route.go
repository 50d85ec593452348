package domain

import "strings"

// Route is the label a question is narrowed to before answering.
type Route string

// Route labels offered to the classifier.
const (
	RoutePython    Route = "py"
	RouteHTML      Route = "html"
	RouteCSS       Route = "css"
	RouteJS        Route = "js"
	RouteTS        Route = "ts"
	RouteJava      Route = "java"
	RouteDirectory Route = "directory_structure"
	RouteGeneral   Route = "general"
	RouteOther     Route = "other"
)

// Routes lists labels in the order presented to the classifier.
var Routes = []Route{
	RoutePython, RouteHTML, RouteCSS, RouteJS, RouteTS, RouteJava,
	RouteDirectory, RouteGeneral, RouteOther,
}

var routeAliases = map[string]Route{
	"directory": RouteDirectory,
	"dir":       RouteDirectory,
	"folder":    RouteDirectory,
	"python":    RoutePython,
}

// ParseRoute normalises a classifier reply. Unknown replies report false.
func ParseRoute(s string) (Route, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "`'\".")
	if r, ok := routeAliases[s]; ok {
		return r, true
	}
	for _, r := range Routes {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// IsFileType reports whether the route narrows to a single file type.
func (r Route) IsFileType() bool {
	return r != RouteDirectory && r != RouteGeneral
}

// String returns the label.
func (r Route) String() string {
	return string(r)
}
