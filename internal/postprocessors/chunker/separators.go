package chunker

// Split points per extension, most significant first. Each list ends with
// the generic blank line, newline and space fallbacks.
var separatorTable = map[string][]string{
	"py":    {"\nclass ", "\ndef ", "\n\n", "\n", " "},
	"ipynb": {"\n\n", "\n", " "},
	"js":    {"\nclass ", "\nfunction ", "\nconst ", "\nlet ", "\n\n", "\n", " "},
	"ts":    {"\nclass ", "\nfunction ", "\nconst ", "\nlet ", "\n\n", "\n", " "},
	"jsx":   {"\nfunction ", "\nconst ", "\nclass ", "\n\n", "\n", " "},
	"tsx":   {"\nfunction ", "\nconst ", "\nclass ", "\n\n", "\n", " "},
	"java":  {"\nclass ", "\npublic ", "\nprivate ", "\nprotected ", "\nvoid ", "\n\n", "\n", " "},
	"cs":    {"\nclass ", "\npublic ", "\nprivate ", "\nprotected ", "\nvoid ", "\n\n", "\n", " "},
	"c":     {"\nvoid ", "\nint ", "\nfloat ", "\nchar ", "\n\n", "\n", " "},
	"cpp":   {"\nclass ", "\nnamespace ", "\nvoid ", "\nint ", "\n\n", "\n", " "},
	"go":    {"\nfunc ", "\nvar ", "\n\n", "\n", " "},
	"rb":    {"\ndef ", "\nclass ", "\nmodule ", "\n\n", "\n", " "},
	"rs":    {"\nfn ", "\nstruct ", "\nimpl ", "\n\n", "\n", " "},
	"swift": {"\nfunc ", "\nclass ", "\nstruct ", "\n\n", "\n", " "},
	"kt":    {"\nfun ", "\nclass ", "\nobject ", "\n\n", "\n", " "},
	"kts":   {"\nfun ", "\nclass ", "\nobject ", "\n\n", "\n", " "},
	"php":   {"\nfunction ", "\nclass ", "\n\n", "\n", " "},
	"sh":    {"\nfunction ", "\n\n", "\n", " "},
	"ps1":   {"\nfunction ", "\n\n", "\n", " "},
	"bat":   {"\n", " "},
	"sql":   {";\n", "\n", " "},
	"json":  {"},", ",\n", "\n", " "},
	"yaml":  {"\n-", "\n", " "},
	"yml":   {"\n-", "\n", " "},
	"toml":  {"\n[", "\n", " "},
	"ini":   {"\n[", "\n", " "},
	"env":   {"\n", " "},
	"md":    {"\n## ", "\n# ", "\n\n", "\n", " "},
	"txt":   {"\n\n", "\n", " "},
}

var defaultSeparators = []string{"\n\n", "\n", " "}

// SeparatorsFor returns the split points for an extension.
func SeparatorsFor(ext string) []string {
	if seps, ok := separatorTable[ext]; ok {
		return seps
	}
	return defaultSeparators
}
