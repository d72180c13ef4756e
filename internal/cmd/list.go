package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fnug-dev/fnug/internal/config"
	fnuggit "github.com/fnug-dev/fnug/internal/git"
	"github.com/fnug-dev/fnug/internal/selectors"
	"github.com/fnug-dev/fnug/internal/style"
)

var (
	listGroup string
	listName  string
	listAuto  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured commands and their current selection state",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listGroup, "group", "", "Filter by group name (substring match)")
	listCmd.Flags().StringVar(&listName, "name", "", "Filter by command name or id (substring match)")
	listCmd.Flags().StringVar(&listAuto, "auto", "", "Filter by auto type: git, watch, always, none")
}

var headerCaser = cases.Title(language.English)

func runList(cmd *cobra.Command, args []string) error {
	all := loadedRoot.AllCommands()
	pipeline := selectors.NewPipeline(fnuggit.NewScanner())
	selected, err := pipeline.Select(all)
	if err != nil {
		return err
	}
	selectedIDs := make(map[string]bool, len(selected))
	for _, c := range selected {
		selectedIDs[c.ID] = true
	}

	t := style.NewTable(
		style.Column{Name: headerCaser.String("name"), Width: 24},
		style.Column{Name: headerCaser.String("command"), Width: 36},
		style.Column{Name: headerCaser.String("auto"), Width: 14},
		style.Column{Name: headerCaser.String("selected"), Width: 8},
	)

	for _, c := range all {
		if listGroup != "" {
			// EntryPath ends with the command's own name; match only the groups.
			groupPath := c.EntryPath
			if len(groupPath) > 0 {
				groupPath = groupPath[:len(groupPath)-1]
			}
			if !strings.Contains(strings.ToLower(strings.Join(groupPath, ">")), strings.ToLower(listGroup)) {
				continue
			}
		}
		if listName != "" {
			nl := strings.ToLower(listName)
			if !strings.Contains(strings.ToLower(c.Name), nl) && !strings.Contains(strings.ToLower(c.ID), nl) {
				continue
			}
		}
		auto := autoLabel(c.Auto)
		if listAuto != "" && !strings.EqualFold(auto, listAuto) && !(listAuto == "none" && auto == "manual") {
			continue
		}

		selectedCell := ""
		if selectedIDs[c.ID] {
			selectedCell = style.Success.Render("yes")
		}
		t.AddRow(c.Name, c.Cmd, auto, selectedCell)
	}

	fmt.Print(t.Render())
	return nil
}

func autoLabel(a config.Auto) string {
	switch {
	case a.IsAlways():
		return "always"
	case a.IsGit():
		return "git"
	case a.IsWatch():
		return "watch"
	default:
		return "manual"
	}
}
