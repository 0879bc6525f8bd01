package models_test

import (
	"testing"

	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func avatarIsNull(t *testing.T, db *gorm.DB, userID uint64) bool {
	t.Helper()
	var isNull bool
	require.NoError(t, db.Raw("SELECT avatar IS NULL FROM users WHERE id = ?", userID).Scan(&isNull).Error)
	return isNull
}

func TestJSONStoresNullWhenInvalid(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	user := testhelpers.CreateUser(t, db, "alice")
	assert.True(t, avatarIsNull(t, db, user.ID))

	var loaded models.User
	require.NoError(t, db.First(&loaded, user.ID).Error)
	assert.False(t, loaded.Avatar.Valid)

	ref := models.ImageRef{Key: "users/a.png", ContentType: "image/png", Size: 10}
	require.NoError(t, db.Model(&loaded).Update("avatar", models.NewJSON(ref)).Error)
	assert.False(t, avatarIsNull(t, db, user.ID))
	require.NoError(t, db.First(&loaded, user.ID).Error)
	require.True(t, loaded.Avatar.Valid)
	assert.Equal(t, ref, loaded.Avatar.Data())

	require.NoError(t, db.Model(&loaded).Update("avatar", models.JSON[models.ImageRef]{}).Error)
	assert.True(t, avatarIsNull(t, db, user.ID))
	require.NoError(t, db.First(&loaded, user.ID).Error)
	assert.False(t, loaded.Avatar.Valid)
}
