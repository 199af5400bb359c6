package verify

import (
	"testing"

	"github.com/agentic-research/roleroute/api"
	"github.com/agentic-research/roleroute/internal/rules"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, fsys billy.Filesystem, p, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fsys, p, []byte(content), 0o644))
}

func TestCheck_Clean(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "officer/cleaning/page.tsx", `<Link href="/officer/cleaning/request">Request</Link>`)
	write(t, fsys, "treasurer/finance/page.tsx", `<Link href="/treasurer/finance/expenses">E</Link><Link href="/admin/occupants">O</Link>`)

	vs, err := Check(fsys, rules.Default())
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestCheck_ForeignLink(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "officer/cleaning/page.tsx", "ok\n<Link href=\"/occupant/cleaning/request\">Request</Link>\n")
	write(t, fsys, "adviser/evaluation/page.tsx", "<Link href={`/occupant/evaluation/${id}`}>Go</Link>")

	vs, err := Check(fsys, rules.Default())
	require.NoError(t, err)
	require.Len(t, vs, 2)

	assert.Equal(t, ForeignLink, vs[0].Kind)
	assert.Equal(t, "adviser/evaluation/page.tsx", vs[0].Path)
	assert.Equal(t, "line 1 references /occupant/", vs[0].Detail)

	assert.Equal(t, "officer/cleaning/page.tsx", vs[1].Path)
	assert.Equal(t, "line 2 references /occupant/", vs[1].Detail)
	assert.Equal(t, "foreign-link: officer/cleaning/page.tsx: line 2 references /occupant/", vs[1].String())
}

func TestCheck_GlobalPrefix(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "officer/reporting/page.tsx", `<Link href="/reporting/weekly">W</Link>`)
	write(t, fsys, "adviser/reporting/page.tsx", `<Link href="/adviser/reporting/weekly">W</Link>`)

	vs, err := Check(fsys, rules.Default())
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "officer/reporting/page.tsx", vs[0].Path)
	assert.Equal(t, "line 1 references /reporting", vs[0].Detail)
}

func TestCheck_AliasLeft(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "student_assistant/cleaning/page.tsx", `import CleaningPage from "../../occupant/cleaning/page";
export default CleaningPage;
`)
	// nested pages are not route aliases of the module
	write(t, fsys, "student_assistant/cleaning/request/page.tsx", `import RequestPage from "./view";
export default RequestPage;
`)

	vs, err := Check(fsys, rules.Default())
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, AliasLeft, vs[0].Kind)
	assert.Equal(t, "student_assistant/cleaning/page.tsx", vs[0].Path)
}

func TestCheck_RootLeft(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "ai/page.tsx", "ai")

	vs, err := Check(fsys, rules.Default())
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, Violation{Kind: RootLeft, Path: "ai", Detail: "shared root still present"}, vs[0])
}

func TestCheck_UnknownAliasMode(t *testing.T) {
	p := &api.Plan{Roles: []string{"a"}, AliasMode: "guess"}
	_, err := Check(memfs.New(), p)
	assert.Error(t, err)
}

func TestCheck_CopiedPageWithMarkers(t *testing.T) {
	page := `import EventsPage from "@/components/events";
export default function Page() { return <EventsPage />; }
`
	fsys := memfs.New()
	write(t, fsys, "occupant/events/page.tsx", page)
	write(t, fsys, "officer/events/page.tsx", page)

	vs, err := Check(fsys, rules.Default())
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestCheck_DanglingSourceLink(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "admin/occupants/page.tsx", "<Link href=\"/reporting/weekly\">R</Link>\n"+
		"<Link href=\"/settings\">S</Link>\n"+
		"<Link href=\"/reportingx\">X</Link>\n"+
		"<Link href=\"/admin/occupants/new\">N</Link>\n")

	vs, err := Check(fsys, rules.Default())
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, Violation{Kind: DanglingLink, Path: "admin/occupants/page.tsx", Detail: "line 1 references removed root /reporting"}, vs[0])
	assert.Equal(t, Violation{Kind: DanglingLink, Path: "admin/occupants/page.tsx", Detail: "line 2 references removed root /settings"}, vs[1])
}

func TestCheck_LinkToRemainingRoot(t *testing.T) {
	fsys := memfs.New()
	write(t, fsys, "reporting/page.tsx", "report")
	write(t, fsys, "admin/rooms/page.tsx", "<Link href={`/reporting/${id}`}>R</Link>\n")

	vs, err := Check(fsys, rules.Default())
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, RootLeft, vs[0].Kind, "the root still exists so the link resolves")
}

func TestRootLinks(t *testing.T) {
	content := "<a href=\"/ai\">\n<a href={`/ai/${x}`}>\n<a href=\"/aim\">"
	assert.Equal(t, []int{3, 18}, rootLinks(content, "ai"))
}
