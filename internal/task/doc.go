// Package task owns the to-do list: the task records, their validation, and
// the file-backed Store that persists them.
//
// The data file is a pretty-printed JSON array:
//
//	[
//	  {
//	    "id": "0b7d9a52-2d6c-4c55-9f0e-7a6a1b1f4a10",
//	    "title": "Buy milk",
//	    "completed": false,
//	    "created_at": "2024-05-01T09:30:00+02:00",
//	    "due_date": "2024-05-02",
//	    "priority": 1,
//	    "category": "home"
//	  }
//	]
//
// due_date and category are null when absent. Files written before tasks
// carried an id are accepted; ids are generated on load and written back on
// the next mutation.
//
// # Identity
//
// Mutations address tasks by id. DeleteAt, ToggleAt and UpdateAt remain for
// callers that hold a position in the unfiltered list.
//
// # Persistence
//
// Every mutation rewrites the whole file through a temporary file and an
// atomic rename. A Store assumes it is the only writer of its file and is not
// safe for concurrent use.
//
// # Priority Range
//
//   - 1: default
//   - 5: highest value accepted
package task
