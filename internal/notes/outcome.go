package notes

import "fmt"

// Level classifies an Outcome for display.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Outcome is the one-shot message an operation reports back to the user.
type Outcome struct {
	Level Level
	Text  string
}

// Op names the operation a denial message refers to.
type Op string

const (
	OpRead   Op = "access"
	OpUpdate Op = "edit"
	OpDelete Op = "delete"
)

func Success(text string) Outcome {
	return Outcome{Level: LevelSuccess, Text: text}
}

func Failure(text string) Outcome {
	return Outcome{Level: LevelError, Text: text}
}

// Denied is shown for both missing and foreign notes so the two cases
// cannot be told apart.
func Denied(op Op) Outcome {
	return Failure(fmt.Sprintf("You do not have permission to %s this note.", op))
}

func created(title string) Outcome {
	return Success(fmt.Sprintf(`"%s" has been created!`, title))
}

func updated(title string) Outcome {
	return Success(fmt.Sprintf(`"%s" has been updated!`, title))
}

func deleted(title string) Outcome {
	return Success(fmt.Sprintf(`"%s" has been deleted!`, title))
}
