package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrToUint64_CanalValueTypes(t *testing.T) {
	// Canal 的行数据里同一列可能以不同 JSON 类型出现
	assert.Equal(t, uint64(42), StrToUint64("42"))
	assert.Equal(t, uint64(42), StrToUint64(float64(42)))
	assert.Equal(t, uint64(42), StrToUint64(int64(42)))

	assert.Zero(t, StrToUint64(nil))
	assert.Zero(t, StrToUint64("abc"))
	assert.Zero(t, StrToUint64(float64(-1)))
	assert.Zero(t, StrToUint64(int64(-1)))
	assert.Zero(t, StrToUint64(true))
}

func TestToCanalMessage(t *testing.T) {
	payload := []byte(`{
		"table": "likes",
		"type": "INSERT",
		"data": [{"user_id": "7", "post_id": "1"}]
	}`)

	msg, err := ToCanalMessage(&sarama.ConsumerMessage{Value: payload}, "likes")
	require.NoError(t, err)
	assert.Equal(t, INSERT, msg.Type)
	assert.Equal(t, uint64(7), StrToUint64(msg.Data[0]["user_id"]))
}

func TestToCanalMessage_TableMismatch(t *testing.T) {
	payload := []byte(`{"table": "posts", "type": "INSERT", "data": [{"id": "1"}]}`)

	_, err := ToCanalMessage(&sarama.ConsumerMessage{Value: payload}, "likes")
	assert.Error(t, err)
}

func TestToCanalMessage_EmptyData(t *testing.T) {
	payload := []byte(`{"table": "likes", "type": "INSERT", "data": []}`)

	_, err := ToCanalMessage(&sarama.ConsumerMessage{Value: payload}, "likes")
	assert.Error(t, err)
}

func TestToCanalMessage_BadJSON(t *testing.T) {
	_, err := ToCanalMessage(&sarama.ConsumerMessage{Value: []byte("{")}, "likes")
	assert.Error(t, err)
}

func TestFlippedToDeleted(t *testing.T) {
	flipped := &CanalMessage{
		Type: UPDATE,
		Data: []map[string]interface{}{{"is_deleted": "1"}},
		Old:  []map[string]interface{}{{"is_deleted": "0"}},
	}
	assert.True(t, flippedToDeleted(flipped))

	// is_deleted 没变化的普通编辑
	edited := &CanalMessage{
		Type: UPDATE,
		Data: []map[string]interface{}{{"is_deleted": "0", "content": "new"}},
		Old:  []map[string]interface{}{{"content": "old"}},
	}
	assert.False(t, flippedToDeleted(edited))

	noOld := &CanalMessage{
		Type: UPDATE,
		Data: []map[string]interface{}{{"is_deleted": "1"}},
	}
	assert.False(t, flippedToDeleted(noOld))
}
