package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, StudyFile{}.AverageRating())
	assert.Equal(t, 3.0, StudyFile{RatingSum: 6, RatingCount: 2}.AverageRating())
}

func TestRoleIsStaff(t *testing.T) {
	assert.True(t, RoleSuperAdmin.IsStaff())
	assert.True(t, RoleEditor.IsStaff())
	assert.False(t, RoleStudent.IsStaff())
	assert.False(t, UserRole("").IsStaff())
}

func TestUserPublicDropsPassword(t *testing.T) {
	u := User{ID: "1", Username: "Ahmed@Ali", Password: "Ahmed@Ali"}
	assert.Empty(t, u.Public().Password)
	assert.Equal(t, "Ahmed@Ali", u.Password)
}

func TestIsKnownIcon(t *testing.T) {
	assert.True(t, IsKnownIcon(IconShield))
	assert.False(t, IsKnownIcon("Rocket"))
	assert.Equal(t, "refused", OutcomeRefused.String())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	all, pagination := Paginate(items, 3, 0)
	assert.Equal(t, items, all)
	assert.Equal(t, &Pagination{Page: 1, PageSize: 5, TotalCount: 5}, pagination)

	page, pagination := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, &Pagination{Page: 2, PageSize: 2, TotalCount: 5}, pagination)

	last, _ := Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, last)

	beyond, pagination := Paginate(items, 9, 2)
	assert.Empty(t, beyond)
	assert.NotNil(t, beyond)
	assert.Equal(t, 5, pagination.TotalCount)
}
