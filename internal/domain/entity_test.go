package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSenderName(t *testing.T) {
	t.Run("Приоритет username над именем", func(t *testing.T) {
		p := Person{ID: 1, Username: "bob", FirstName: "Боб", LastName: "Иванов"}
		assert.Equal(t, "@bob", SenderName(p))
	})

	t.Run("Имя и фамилия объединяются через пробел", func(t *testing.T) {
		p := Person{ID: 1, FirstName: "Боб", LastName: "Иванов"}
		assert.Equal(t, "Боб Иванов", SenderName(p))
	})

	t.Run("Пустые части имени пропускаются", func(t *testing.T) {
		assert.Equal(t, "Боб", SenderName(Person{ID: 1, FirstName: "Боб"}))
		assert.Equal(t, "Иванов", SenderName(Person{ID: 1, LastName: "Иванов"}))
	})

	t.Run("Фолбэк на User_<id>", func(t *testing.T) {
		assert.Equal(t, "User_42", SenderName(Person{ID: 42}))
	})

	t.Run("Неизвестная сущность", func(t *testing.T) {
		assert.Equal(t, UnknownName, SenderName(nil))
		assert.Equal(t, UnknownName, SenderName(Person{}))
	})
}

func TestChatName(t *testing.T) {
	t.Run("Для канала username имеет приоритет над заголовком", func(t *testing.T) {
		c := Channel{ID: 100, Title: "Новости", Username: "alpha"}
		assert.Equal(t, "@alpha", ChatName(c))
	})

	t.Run("Канал без username использует заголовок", func(t *testing.T) {
		assert.Equal(t, "Новости", ChatName(Channel{ID: 100, Title: "Новости"}))
	})

	t.Run("Группа использует заголовок", func(t *testing.T) {
		assert.Equal(t, "Болталка", ChatName(Group{ID: 5, Title: "Болталка"}))
	})

	t.Run("Личный чат использует имя собеседника", func(t *testing.T) {
		assert.Equal(t, "@bob", ChatName(Person{ID: 1, Username: "bob"}))
	})

	t.Run("Фолбэк на Chat_<id> при отсутствии метаданных", func(t *testing.T) {
		assert.Equal(t, "Chat_100", ChatName(Channel{ID: 100}))
		assert.Equal(t, "Chat_5", ChatName(Group{ID: 5}))
	})

	t.Run("Неизвестный чат", func(t *testing.T) {
		assert.Equal(t, UnknownChatName, ChatName(nil))
	})
}

func TestMarkedID(t *testing.T) {
	assert.Equal(t, int64(42), Person{ID: 42}.MarkedID())
	assert.Equal(t, int64(-5), Group{ID: 5}.MarkedID())
	assert.Equal(t, int64(-1001111111111), Channel{ID: 1111111111}.MarkedID())
}
