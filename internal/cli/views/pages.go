package views

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/terra-dev/terra/internal/auth"
	"github.com/terra-dev/terra/internal/cli/client"
	"github.com/terra-dev/terra/internal/cli/gate"
)

// DataSource supplies the lists the pages show. Failures surface as empty lists.
type DataSource interface {
	Projects(ctx context.Context) []client.Project
	Tension(ctx context.Context, dir string) []client.TensionEntry
}

// Pages renders the restricted views as plain text
type Pages struct {
	Gate *gate.Gate
	Data DataSource
	Out  io.Writer
	// TensionDir is the leaderboard order, client.Ascending or client.Descending
	TensionDir string
}

// Register installs the pages on r. LoginPage is left to the caller since
// it needs a terminal.
func (p *Pages) Register(r *Router) {
	r.Register(ProjectList, Restricted(p.Gate, ProjectList, gate.DefaultTier, p.renderProjects))
	r.Register(FactionViewer, Restricted(p.Gate, FactionViewer, gate.DefaultTier, p.renderFaction))
	r.Register(Leaderboard, Restricted(p.Gate, Leaderboard, gate.DefaultTier, p.renderLeaderboard))
	r.Register(NotFound, p.renderNotFound)
}

// Restricted wraps render so it only runs for sessions holding required.
// Otherwise the guard redirects to the login view and render is skipped.
func Restricted(g *gate.Gate, name Name, required auth.Tier, render Renderer) Renderer {
	return func(ctx context.Context, r *Router) error {
		g.Guard(ctx, r, required)
		if r.Current() != name {
			return nil
		}
		return render(ctx, r)
	}
}

func (p *Pages) renderProjects(ctx context.Context, _ *Router) error {
	projects := p.Data.Projects(ctx)
	if len(projects) == 0 {
		fmt.Fprintln(p.Out, "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tWEIGHT\tDESCRIPTION")
	fmt.Fprintln(w, "────\t──────\t───────────")
	for _, project := range projects {
		fmt.Fprintf(w, "%s\t%d\t%s\n", project.Name, project.Weight, project.Description)
	}
	return w.Flush()
}

func (p *Pages) renderFaction(ctx context.Context, _ *Router) error {
	status := p.Gate.FetchAuthStatus(ctx)
	fmt.Fprintf(p.Out, "Role: %s\n\n", status.Tier)

	projects := p.Data.Projects(ctx)
	if len(projects) == 0 {
		fmt.Fprintln(p.Out, "Your faction has no projects.")
		return nil
	}

	ranked := slices.Clone(projects)
	slices.SortStableFunc(ranked, func(a, b client.Project) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPROJECT\tWEIGHT")
	fmt.Fprintln(w, "────\t───────\t──────")
	for i, project := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, project.Name, project.Weight)
	}
	return w.Flush()
}

func (p *Pages) renderLeaderboard(ctx context.Context, _ *Router) error {
	entries := p.Data.Tension(ctx, p.TensionDir)
	if len(entries) == 0 {
		fmt.Fprintln(p.Out, "Leaderboard is empty.")
		return nil
	}

	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tFACTION\tTENSION")
	fmt.Fprintln(w, "────\t───────\t───────")
	for i, entry := range entries {
		fmt.Fprintf(w, "%d\t%d\t%d\n", i+1, entry.ID, entry.Tension)
	}
	return w.Flush()
}

func (p *Pages) renderNotFound(context.Context, *Router) error {
	fmt.Fprintln(p.Out, "Page not found. Available pages:")
	for _, route := range Routes {
		fmt.Fprintf(p.Out, "  %-14s %s\n", route.Path, route.Name)
	}
	return nil
}
