package mcp

import "github.com/mark3labs/mcp-go/mcp"

var saveToolDef = mcp.NewTool("capsule_save",
	mcp.WithDescription("Create or update a study capsule from authoring text. "+
		"Notes are one per line, flashcards are \"front || back\" lines and the quiz is a JSON array. "+
		"Read armina://authoring-format for the exact formats."),
	mcp.WithString("id", mcp.Description("Existing capsule ID to update (omit to create)")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Capsule title")),
	mcp.WithString("subject", mcp.Description("Subject, e.g. Maths")),
	mcp.WithString("level", mcp.Description("Level, defaults to the configured default level")),
	mcp.WithString("notes", mcp.Description("Notes, one per line")),
	mcp.WithString("flashcards", mcp.Description("Flashcards, one \"front || back\" per line")),
	mcp.WithString("quiz", mcp.Description("Quiz as a JSON array of {q, options, answer, explanation}")),
	mcp.WithBoolean("confirm_empty", mcp.Description("Save even when notes, flashcards and quiz are all empty")),
)

var fetchToolDef = mcp.NewTool("capsule_fetch",
	mcp.WithDescription("Fetch a capsule with its learning progress."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID")),
)

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List capsules, most recently saved first, with best quiz scores."),
	mcp.WithString("subject", mcp.Description("Filter by subject (case-insensitive)")),
	mcp.WithString("level", mcp.Description("Filter by level (case-insensitive)")),
	mcp.WithString("query", mcp.Description("Match title, subject or description")),
	mcp.WithNumber("limit", mcp.Description("Max items to return (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var deleteToolDef = mcp.NewTool("capsule_delete",
	mcp.WithDescription("Delete a capsule and its progress."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID")),
)

var resetToolDef = mcp.NewTool("capsule_reset",
	mcp.WithDescription("Remove every capsule and all progress. Cannot be undone."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
)

var exportToolDef = mcp.NewTool("capsule_export",
	mcp.WithDescription("Write the whole library to an armina-classroom/v1 JSON file."),
	mcp.WithString("path", mcp.Description("Output .json path (default: exports directory)")),
)

var importToolDef = mcp.NewTool("capsule_import",
	mcp.WithDescription("Import capsules from an armina-classroom/v1 JSON file. Existing IDs are overwritten."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to the export file")),
)

var learnStartToolDef = mcp.NewTool("learn_start",
	mcp.WithDescription("Open a learn session on a capsule. Returns the session view with its session_id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID")),
)

var learnViewToolDef = mcp.NewTool("learn_view",
	mcp.WithDescription("Show the current state of a learn session."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Learn session ID")),
)

var learnFlashcardToolDef = mcp.NewTool("learn_flashcard",
	mcp.WithDescription("Move through the flashcard deck. The deck wraps around."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Learn session ID")),
	mcp.WithString("action",
		mcp.Description("current, next, prev or flip (default current)"),
		mcp.Enum("current", "next", "prev", "flip"),
	),
)

var learnAnswerToolDef = mcp.NewTool("learn_answer",
	mcp.WithDescription("Answer the open quiz question. Progress is saved when the last question is answered."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Learn session ID")),
	mcp.WithNumber("choice", mcp.Description("Zero-based option index; omit to get NO_SELECTION")),
)

// authoringFormatURI names the resource describing the capsule authoring formats.
const authoringFormatURI = "armina://authoring-format"

// AuthoringFormat documents the text formats accepted by capsule_save.
const AuthoringFormat = `# Armina authoring format

## Notes
One note per line. Blank lines are ignored. Notes render as Markdown.

## Flashcards
One card per line, front and back separated by "||":

    What is 2 + 2? || 4
    Capital of France || Paris

## Quiz
A JSON array of questions. "q" or "question" holds the prompt, "options" or
"opts" the choices and "answer" (or "correctIndex") the zero-based index of
the correct option:

    [
      {"q": "2 + 2?", "options": ["3", "4"], "answer": 1, "explanation": "Basic addition."}
    ]

Invalid quiz JSON is rejected and nothing is saved.
`
