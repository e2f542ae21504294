package bluray

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ParseCommandTable collects every <command name=".." value=".."> element.
// Elements missing either attribute are skipped and later duplicates win.
func ParseCommandTable(doc *xmlquery.Node) CommandTable {
	table := CommandTable{}
	if doc == nil {
		return table
	}

	for _, command := range xmlquery.Find(doc, "//command") {
		name := command.SelectAttr("name")
		value := command.SelectAttr("value")
		if name == "" || value == "" {
			continue
		}
		table[strings.ToUpper(name)] = value
	}
	return table
}

// resolveCommandTable fetches the player's remote command list.
// An empty table is returned as-is; the caller decides what "not ready" means.
func (c *PlayerClient) resolveCommandTable(ctx context.Context) (CommandTable, error) {
	c.logger.Debug().Msg("Fetching remote command list")

	doc, err := c.fetchXML(ctx, CommandListPath, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote command list: %w", err)
	}

	table := ParseCommandTable(doc)
	c.logger.Debug().
		Int("commands", len(table)).
		Msg("Remote command list resolved")

	return table, nil
}
