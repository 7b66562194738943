package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

const saltLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandSeq 生成 n 位随机串，用作每用户独立的盐。
func RandSeq(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(saltLetters))))
		if err != nil {
			// crypto/rand 失败说明系统熵源坏了，没有降级余地
			panic(err)
		}
		b[i] = saltLetters[idx.Int64()]
	}
	return string(b)
}

// EncryptPassword 盐值哈希。盐和哈希分开存储。
func EncryptPassword(pwd, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + pwd))
	return hex.EncodeToString(sum[:])
}
