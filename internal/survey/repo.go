package survey

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists questionnaire forms in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureForm creates the training's form when it does not exist yet and
// returns it either way.
func (r *Repository) EnsureForm(ctx context.Context, trainingID, title string) (Form, error) {
	if trainingID == "" {
		return Form{}, errors.New("training id required")
	}
	f := Form{ID: uuid.NewString(), TrainingID: trainingID, Title: title, CreatedAt: time.Now().UTC()}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO forms (id, training_id, title, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (training_id) DO NOTHING
	`, f.ID, f.TrainingID, f.Title, f.CreatedAt)
	if err != nil {
		return Form{}, err
	}
	existing, err := r.GetFormByTraining(ctx, trainingID)
	if err != nil {
		return Form{}, err
	}
	return *existing, nil
}

// GetFormByTraining returns the form for a training with questions and
// possible answers nested, nil when the training has no form.
func (r *Repository) GetFormByTraining(ctx context.Context, trainingID string) (*Form, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, training_id, title, created_at FROM forms WHERE training_id = $1
	`, trainingID)
	var f Form
	if err := row.Scan(&f.ID, &f.TrainingID, &f.Title, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	questions, err := r.listQuestions(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.Questions = questions
	return &f, nil
}

func (r *Repository) listQuestions(ctx context.Context, formID string) ([]Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id, q.form_id, q.text, q.position,
		       a.id, a.question_id, a.text, a.position
		FROM questions q
		LEFT JOIN possible_answers a ON a.question_id = q.id
		WHERE q.form_id = $1
		ORDER BY q.position, q.id, a.position, a.id
	`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Question
	for rows.Next() {
		var q Question
		var ansID, ansQID, ansText sql.NullString
		var ansPos sql.NullInt64
		if err := rows.Scan(&q.ID, &q.FormID, &q.Text, &q.Position, &ansID, &ansQID, &ansText, &ansPos); err != nil {
			return nil, err
		}
		if n := len(res); n == 0 || res[n-1].ID != q.ID {
			res = append(res, q)
		}
		if ansID.Valid {
			last := &res[len(res)-1]
			last.Answers = append(last.Answers, PossibleAnswer{
				ID:         ansID.String,
				QuestionID: ansQID.String,
				Text:       ansText.String,
				Position:   int(ansPos.Int64),
			})
		}
	}
	return res, rows.Err()
}

// AddQuestion appends a question with its possible answers to a form.
func (r *Repository) AddQuestion(ctx context.Context, formID, text string, position int, answers []string) (Question, error) {
	if formID == "" || text == "" {
		return Question{}, errors.New("form and text required")
	}
	q := Question{ID: uuid.NewString(), FormID: formID, Text: text, Position: position}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO questions (id, form_id, text, position) VALUES ($1,$2,$3,$4)
	`, q.ID, q.FormID, q.Text, q.Position)
	if err != nil {
		return Question{}, err
	}
	for i, ansText := range answers {
		a := PossibleAnswer{ID: uuid.NewString(), QuestionID: q.ID, Text: ansText, Position: i}
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO possible_answers (id, question_id, text, position) VALUES ($1,$2,$3,$4)
		`, a.ID, a.QuestionID, a.Text, a.Position); err != nil {
			return Question{}, err
		}
		q.Answers = append(q.Answers, a)
	}
	return q, nil
}

// DeleteQuestion removes a question and its answers.
func (r *Repository) DeleteQuestion(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SaveAnswer upserts one participant answer.
func (r *Repository) SaveAnswer(ctx context.Context, ua UserAnswer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_answers (employee_id, question_id, answer_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, question_id) DO UPDATE SET answer_id = EXCLUDED.answer_id
	`, ua.EmployeeID, ua.QuestionID, ua.AnswerID)
	return err
}

// ListAnswers returns every submitted answer for a form.
func (r *Repository) ListAnswers(ctx context.Context, formID string) ([]UserAnswer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ua.employee_id, ua.question_id, ua.answer_id, ua.created_at
		FROM user_answers ua
		JOIN questions q ON q.id = ua.question_id
		WHERE q.form_id = $1
		ORDER BY ua.employee_id, q.position
	`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []UserAnswer
	for rows.Next() {
		var ua UserAnswer
		if err := rows.Scan(&ua.EmployeeID, &ua.QuestionID, &ua.AnswerID, &ua.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, ua)
	}
	return res, rows.Err()
}
