package mcp

import "github.com/mark3labs/mcp-go/mcp"

var startToolDef = mcp.NewTool("worklog_start",
	mcp.WithDescription("Start a new running record. A break since the last record that falls inside the configured gap-fill window is logged as an idle record first. Fails with IN_PROGRESS if a record is already running."),
	mcp.WithString("tag", mcp.Description("Tag for the new record, e.g. a ticket key")),
	mcp.WithString("description", mcp.Description("Free-text description (markdown)")),
	mcp.WithString("from_id", mcp.Description("Copy tag and description from this record; tag/description arguments override the copied values")),
)

var finishToolDef = mcp.NewTool("worklog_finish",
	mcp.WithDescription("Finish the running record at the current time. Fails with NOT_IN_PROGRESS if nothing is running."),
)

var tapToolDef = mcp.NewTool("worklog_tap",
	mcp.WithDescription("Finish the running record and immediately start an untagged one at the same instant."),
)

var fillToolDef = mcp.NewTool("worklog_fill",
	mcp.WithDescription("Log a finished record covering the time between the end of the last record and now. Fails with IN_PROGRESS while a record is running."),
	mcp.WithString("tag", mcp.Description("Tag for the filled record")),
	mcp.WithString("description", mcp.Description("Description for the filled record")),
)

var updateToolDef = mcp.NewTool("worklog_update",
	mcp.WithDescription("Edit a record. Start and end are wall-clock times (HH:MM) applied to the record's own day. The end of a running record cannot be set."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
	mcp.WithString("tag", mcp.Description("New tag")),
	mcp.WithString("description", mcp.Description("New description")),
	mcp.WithString("start", mcp.Description("New start time, HH:MM")),
	mcp.WithString("end", mcp.Description("New end time, HH:MM")),
)

var addToolDef = mcp.NewTool("worklog_add",
	mcp.WithDescription("Insert a 12:00-12:05 placeholder record on a day, keeping the list ordered by start time."),
	mcp.WithString("date", mcp.Description("Day as YYYY-MM-DD (default: selected date)")),
)

var duplicateToolDef = mcp.NewTool("worklog_duplicate",
	mcp.WithDescription("Copy a finished record and place the copy directly after it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
)

var removeToolDef = mcp.NewTool("worklog_remove",
	mcp.WithDescription("Delete a record. The last remaining record cannot be removed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
	mcp.WithDestructiveHintAnnotation(true),
)

var moveToolDef = mcp.NewTool("worklog_move",
	mcp.WithDescription("Swap a record with its neighbour. Moving past either end is a no-op; the running record stays on top."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
	mcp.WithString("direction", mcp.Required(), mcp.Enum("up", "down"), mcp.Description("up = towards the most recent record")),
)

var listToolDef = mcp.NewTool("worklog_list",
	mcp.WithDescription("List the records of one day, newest first, with the day's total minutes."),
	mcp.WithString("date", mcp.Description("Day as YYYY-MM-DD (default: selected date)")),
	mcp.WithBoolean("all", mcp.Description("List every record regardless of date")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var statusToolDef = mcp.NewTool("worklog_status",
	mcp.WithDescription("Report the most recent record, whether it is running and for how long."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var statsToolDef = mcp.NewTool("worklog_stats",
	mcp.WithDescription("Aggregate durations per tag over a calendar range anchored on a date. Weeks start on Monday. Range and sort choices are remembered."),
	mcp.WithString("range", mcp.Enum("day", "week", "month", "year", "all"), mcp.Description("Calendar range (default: last used)")),
	mcp.WithString("date", mcp.Description("Anchor day as YYYY-MM-DD (default: selected date)")),
	mcp.WithString("sort", mcp.Enum("tag", "duration"), mcp.Description("Sort column")),
	mcp.WithString("order", mcp.Enum("asc", "desc"), mcp.Description("Sort order")),
)

var tagsToolDef = mcp.NewTool("worklog_tags",
	mcp.WithDescription("List every distinct tag in use."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("worklog_export",
	mcp.WithDescription("Write every record to a JSON backup file. Defaults to ~/.worklog/backups/worklog-backup-YYYY-MM-DD.json."),
	mcp.WithString("path", mcp.Description("Destination .json path inside an allowed directory")),
	mcp.WithString("label", mcp.Description("Suffix for the default file name")),
)

var importToolDef = mcp.NewTool("worklog_import",
	mcp.WithDescription("Replace every record with the contents of a backup file. A file that fails validation leaves the records untouched."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Backup .json path inside an allowed directory")),
	mcp.WithBoolean("dry_run", mcp.Description("Validate only")),
	mcp.WithDestructiveHintAnnotation(true),
)
