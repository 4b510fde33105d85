package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/riverql/riverql/internal/observability"
	"github.com/riverql/riverql/internal/sqlfront"
)

func (c *CLI) newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query execution commands",
		Long:  `Execute and explain SQL queries against the tables bound by --sources.`,
	}

	cmd.AddCommand(c.newQueryExecCmd())
	cmd.AddCommand(c.newQueryExplainCmd())

	return cmd
}

func (c *CLI) newQueryExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <SQL>",
		Short: "Execute a SQL query",
		Long: `Execute a SQL query against the registered tables. All result rows
are collected, then printed to stdout.

Example:
  riverql query exec "SELECT users.name FROM users WHERE users.age > 30"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQueryExec(args[0])
		},
	}
}

func (c *CLI) runQueryExec(sqlQuery string) error {
	start := time.Now()
	queryID := fmt.Sprintf("q-%d", start.UnixNano())

	result, err := sqlfront.QuerySQL(c.engine, sqlQuery)
	if err != nil {
		c.logQuery(queryID, start, "error", err)
		if c.jsonOutput {
			return c.outputJSON(map[string]interface{}{"success": false, "error": err.Error()})
		}
		c.errorf("Query failed: %v\n", err)
		return err
	}
	defer result.Close()

	var rows []map[string]interface{}
	var columns []string
	for {
		row, err := result.Next()
		if err != nil {
			c.logQuery(queryID, start, "error", err)
			return err
		}
		if row == nil {
			break
		}
		if columns == nil {
			for col := range row {
				columns = append(columns, col)
			}
		}
		out := make(map[string]interface{}, len(row))
		for k, v := range row {
			out[k] = v
		}
		rows = append(rows, out)
	}
	c.logQuery(queryID, start, "success", nil)

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{
			"query_id": queryID,
			"rows":     rows,
			"count":    len(rows),
		})
	}

	c.printf("Query ID: %s\n", queryID)
	c.printf("Duration: %s\n", time.Since(start))
	c.printf("Rows: %d\n\n", len(rows))
	if len(columns) > 0 {
		c.println(strings.Join(columns, "\t"))
		for _, row := range rows {
			values := make([]string, len(columns))
			for i, col := range columns {
				values[i] = formatValue(row[col])
			}
			c.println(strings.Join(values, "\t"))
		}
	}
	return nil
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func (c *CLI) newQueryExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <SQL>",
		Short: "Show how a query will be executed",
		Long: `Plan a query without running it, showing the operator tree, the
join strategy chosen for each join, and the capabilities of every
scanned table.

Example:
  riverql query explain "SELECT orders.product, users.name FROM orders JOIN users ON orders.user_id = users.id"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQueryExplain(args[0])
		},
	}
}

func (c *CLI) runQueryExplain(sqlQuery string) error {
	text, err := sqlfront.ExplainSQL(c.engine, sqlQuery)
	if err != nil {
		if c.jsonOutput {
			return c.outputJSON(map[string]interface{}{"valid": false, "error": err.Error()})
		}
		c.errorf("Explain failed: %v\n", err)
		return err
	}

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{"plan": text})
	}
	c.println(text)
	return nil
}

func (c *CLI) logQuery(queryID string, start time.Time, outcome string, err error) {
	entry := observability.QueryLogEntry{
		QueryID:  queryID,
		Duration: time.Since(start),
		Outcome:  outcome,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	c.logger.LogQuery(entry)
}
