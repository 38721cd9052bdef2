package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrDuplicateSession is returned when creating a session whose ID is taken.
	ErrDuplicateSession = errors.New("quiz session already exists")
	// ErrParticipantNotFound is returned when a user acts before joining a quiz.
	ErrParticipantNotFound = errors.New("participant not found in quiz")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidAnswer indicates a selected option outside the question's range.
	ErrInvalidAnswer = errors.New("invalid answer option")
	// ErrQuizNotActive is returned when starting a quiz that is not in the
	// active state (already started or completed).
	ErrQuizNotActive = errors.New("quiz is not active")
	// ErrUserNotFound is returned when a user ID or username does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering an already-taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
