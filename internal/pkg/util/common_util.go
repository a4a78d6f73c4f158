package util

import (
	"hash/crc32"
	"strconv"
)

// PtrInt 用于将 int 转换为 *int
func PtrInt(i int) *int {
	return &i
}

// PtrInt64 用于将 int64 转换为 *int64
func PtrInt64(i int64) *int64 {
	return &i
}

// PtrStr 用于将 string 转换为 *string
func PtrStr(s string) *string {
	return &s
}

// PtrFloat32 用于将 float32 转换为 *float32
func PtrFloat32(f float32) *float32 {
	return &f
}

// StrToUint64 宽松解析，解析失败返回 0
func StrToUint64(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// StrSliceToUInt64Slice 批量转换，任一元素非法即报错
func StrSliceToUInt64Slice(strs []string) ([]uint64, error) {
	res := make([]uint64, 0, len(strs))
	for _, s := range strs {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

// HashSessionID 将 UUID 字符串转为 int64 种子
func HashSessionID(sessionID string) int64 {
	if sessionID == "" {
		return 0
	}
	return int64(crc32.ChecksumIEEE([]byte(sessionID)))
}
