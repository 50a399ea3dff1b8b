package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func todoStatusPtr(s TodoStatus) *TodoStatus { return &s }

func taskStatusPtr(s TaskStatus) *TaskStatus { return &s }

func TestParseEnums(t *testing.T) {
	s, err := ParseTodoStatus("active")
	require.NoError(t, err)
	assert.Equal(t, TodoStatusActive, s)

	_, err = ParseTodoStatus("archived")
	assert.Error(t, err)

	ts, err := ParseTaskStatus("postponed")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusPostponed, ts)

	_, err = ParseTaskStatus("done")
	assert.Error(t, err)

	p, err := ParseTaskPriority("high")
	require.NoError(t, err)
	assert.Equal(t, TaskPriorityHigh, p)

	_, err = ParseTaskPriority("urgent")
	assert.Error(t, err)
}

func TestCreateTodo_NormalizeDefaults(t *testing.T) {
	c := CreateTodo{Owner: "ada"}
	c.Normalize()

	assert.Equal(t, TodoStatusActive, c.Status)
	assert.Equal(t, DefaultTodoName, c.Name)
	assert.NoError(t, c.Validate())

	// Explicit values survive normalization.
	c = CreateTodo{Owner: "ada", Name: "Chores", Status: TodoStatusInactive}
	c.Normalize()
	assert.Equal(t, "Chores", c.Name)
	assert.Equal(t, TodoStatusInactive, c.Status)
}

func TestCreateTodo_Validate(t *testing.T) {
	tests := []struct {
		name    string
		payload CreateTodo
		wantErr string
	}{
		{
			name:    "valid",
			payload: CreateTodo{Owner: "ada", Name: "Chores", Status: TodoStatusActive},
		},
		{
			name:    "missing_owner",
			payload: CreateTodo{Name: "Chores", Status: TodoStatusActive},
			wantErr: "owner is required",
		},
		{
			name: "owner_too_long",
			payload: CreateTodo{
				Owner:  strings.Repeat("a", 121),
				Name:   "Chores",
				Status: TodoStatusActive,
			},
			wantErr: "owner exceeds",
		},
		{
			name: "name_too_long",
			payload: CreateTodo{
				Owner:  "ada",
				Name:   strings.Repeat("n", 61),
				Status: TodoStatusActive,
			},
			wantErr: "name exceeds",
		},
		{
			name:    "bad_status",
			payload: CreateTodo{Owner: "ada", Name: "Chores", Status: "archived"},
			wantErr: "unknown todo status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateTodo_Validate(t *testing.T) {
	// Every field unset is the one hard error.
	err := UpdateTodo{}.Validate()
	assert.ErrorIs(t, err, ErrNoFields)

	assert.NoError(t, UpdateTodo{Owner: strPtr("grace")}.Validate())
	assert.NoError(t, UpdateTodo{Status: todoStatusPtr(TodoStatusInactive)}.Validate())

	assert.Error(t, UpdateTodo{Owner: strPtr("")}.Validate())
	assert.Error(t, UpdateTodo{Name: strPtr("")}.Validate())
	assert.Error(t, UpdateTodo{Status: todoStatusPtr("archived")}.Validate())
	assert.Error(t, UpdateTodo{Owner: strPtr(strings.Repeat("a", 121))}.Validate())
}

func TestCreateTask_NormalizeDefaults(t *testing.T) {
	c := CreateTask{Brief: "water plants", TodoID: 1, Category: "home"}
	before := time.Now().UTC()
	c.Normalize()

	assert.Equal(t, TaskStatusPending, c.Status)
	assert.Equal(t, TaskPriorityLow, c.Priority)
	assert.WithinDuration(t, before.Add(DefaultTaskDueDelta), c.Due, time.Minute)
	assert.NoError(t, c.Validate())

	// An explicit due time is kept.
	due := time.Date(2027, 1, 2, 12, 0, 0, 0, time.UTC)
	c = CreateTask{Brief: "b", TodoID: 1, Category: "home", Due: due}
	c.Normalize()
	assert.Equal(t, due, c.Due)
}

func TestCreateTask_Validate(t *testing.T) {
	valid := func() CreateTask {
		return CreateTask{
			Brief:    "water plants",
			TodoID:   1,
			Status:   TaskStatusPending,
			Priority: TaskPriorityLow,
			Category: "home",
			Due:      time.Now().Add(time.Hour),
		}
	}

	c := valid()
	assert.NoError(t, c.Validate())

	c = valid()
	c.Brief = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.Brief = strings.Repeat("b", 301)
	assert.Error(t, c.Validate())

	c = valid()
	c.TodoID = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Category = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.Status = "done"
	assert.Error(t, c.Validate())

	c = valid()
	c.Priority = "urgent"
	assert.Error(t, c.Validate())
}

func TestUpdateTask_Validate(t *testing.T) {
	err := UpdateTask{}.Validate()
	assert.ErrorIs(t, err, ErrNoFields)

	// Contents alone counts as a set field and may be empty text.
	assert.NoError(t, UpdateTask{Contents: strPtr("")}.Validate())
	assert.NoError(t, UpdateTask{Status: taskStatusPtr(TaskStatusComplete)}.Validate())

	assert.Error(t, UpdateTask{Brief: strPtr("")}.Validate())
	assert.Error(t, UpdateTask{TodoID: int64Ptr(0)}.Validate())
	assert.Error(t, UpdateTask{Category: strPtr("")}.Validate())
	assert.Error(t, UpdateTask{Status: taskStatusPtr("done")}.Validate())
}
