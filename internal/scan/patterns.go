package scan

import "strings"

// devTools are the binaries that mark a process as development tooling.
// Matching is by process name or by command-line token basename, never
// by raw substring: "go" must not light up every path containing "go".
var devTools = []string{
	"npm", "npx", "yarn", "pnpm", "bun", "node", "deno",
	"vite", "next", "nuxt", "webpack", "esbuild", "tsc", "turbo",
	"cargo", "go", "air",
	"python", "python3", "uvicorn", "gunicorn", "flask",
	"ruby", "rails", "bundle",
	"php", "composer",
	"java", "gradle", "mvn",
	"dotnet",
	"make", "docker", "docker-compose", "tilt",
}

// editorBins classify a matching process as an editor rather than a
// terminal/tool process. Classification looks at the process name only.
var editorBins = []string{
	"code", "code-insiders", "cursor", "zed",
	"subl", "sublime_text",
	"vim", "nvim", "emacs",
	"idea", "goland", "pycharm", "webstorm", "clion", "rider",
}

func nameMatches(name, tool string) bool {
	if strings.EqualFold(name, tool) {
		return true
	}
	return strings.EqualFold(name, tool+".exe")
}

// tokenMatches reports whether any whitespace-separated token of the
// command line has tool as its basename.
func tokenMatches(cmdline, tool string) bool {
	for _, tok := range strings.Fields(cmdline) {
		base := tok
		if i := strings.LastIndexByte(base, '/'); i >= 0 {
			base = base[i+1:]
		}
		if i := strings.LastIndexByte(base, '\\'); i >= 0 {
			base = base[i+1:]
		}
		if nameMatches(base, tool) {
			return true
		}
	}
	return false
}

func matchesAny(name, cmdline string, tools []string) bool {
	for _, tool := range tools {
		if nameMatches(name, tool) || tokenMatches(cmdline, tool) {
			return true
		}
	}
	return false
}

func isEditor(name string) bool {
	for _, bin := range editorBins {
		if nameMatches(name, bin) {
			return true
		}
	}
	return false
}
