package store

import "errors"

var (
	ErrEmailTaken        = errors.New("email is already registered")
	ErrCategoryNameTaken = errors.New("a category with that name already exists in the group")
	ErrCategoryInUse     = errors.New("category has spendings and cannot be deleted")
	ErrBudgetExists      = errors.New("a budget for that category and month already exists")
)
