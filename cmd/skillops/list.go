package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillops/pkg/config"
	"github.com/jingkaihe/skillops/pkg/repocache"
	"github.com/jingkaihe/skillops/pkg/skills"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured skills",
	Long:  `List every configured skill with its install state, description and cache state.`,
	Run: func(cmd *cobra.Command, _ []string) {
		listSkills(os.Stdout, appConfig(cmd.Context()))
	},
}

func listSkills(w io.Writer, cfg *config.Config) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tCACHE\tDESCRIPTION")

	for _, name := range cfg.SkillNames() {
		skill := cfg.Skills[name]
		dests := make([]string, 0, len(skill.Mappings))
		for _, m := range skill.Mappings {
			dests = append(dests, m.Dest)
		}

		entry := skills.Inspect(name, cfg.SkillDir(name), dests)

		status := "not installed"
		description := "-"
		switch {
		case entry.Err != nil:
			status = "invalid SKILL.md"
		case entry.Installed():
			status = fmt.Sprintf("installed (%d/%d synced)", len(entry.Present), len(dests))
			description = entry.Skill.Description
		}

		cache := "missing"
		if ok, err := repocache.IsWorkingCopy(cfg.CachePath(name)); err != nil {
			cache = "unreadable"
		} else if ok {
			cache = "present"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, status, cache, truncate(description, 60))
	}
	tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}
