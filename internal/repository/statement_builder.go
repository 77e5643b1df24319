package repository

import "github.com/Masterminds/squirrel"

// countedStatusSubquery restricts participants to statuses classified as counted.
const countedStatusSubquery = "SELECT pst.id FROM participant_status_types pst WHERE pst.is_counted = true"

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
