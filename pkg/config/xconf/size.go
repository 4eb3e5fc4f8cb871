package xconf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSize 解析带可选单位的大小字符串，返回字节数。
//
// 支持 K/M/G 后缀（大小写不敏感），不带单位时按 KB 解释：
//
//	"10"  → 10 KiB
//	"5M"  → 5 MiB
//	"1g"  → 1 GiB
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty size string", ErrInvalidSize)
	}

	numPart := s
	unit := byte('K')
	if last := s[len(s)-1]; (last >= 'a' && last <= 'z') || (last >= 'A' && last <= 'Z') {
		numPart = s[:len(s)-1]
		unit = last &^ 0x20 // 转大写
	}

	num, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid number %q", ErrInvalidSize, numPart)
	}

	var multiplier uint64
	switch unit {
	case 'K':
		multiplier = 1 << 10
	case 'M':
		multiplier = 1 << 20
	case 'G':
		multiplier = 1 << 30
	default:
		return 0, fmt.Errorf("%w: invalid unit %q, supported: K/M/G", ErrInvalidSize, string(unit))
	}

	if num != 0 && num > math.MaxInt64/multiplier {
		return 0, ErrSizeOverflow
	}
	return int64(num * multiplier), nil
}
