package xrotate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// stampLayout 仅大小轮转的归档时间戳后缀。
// 紧凑格式保证字典序与时间序一致（目录按名字排序即按年龄排序）。
const stampLayout = "20060102T150405"

// maxSeqProbe 同名冲突时的序号探测上限。
// 正常工作负载远达不到；达到上限说明目录被外部干预，返回 ErrNameCollision。
const maxSeqProbe = 1000

// archiveSuffixRe 识别本包生成的归档后缀：
//
//	周期后缀  2026-01 / 2026-01-02 / 2026-01-02T15
//	时间戳后缀 20260102T150405
//
// 均可追加 ".N" 递增序号。保留清理只删除匹配此方案的文件。
var archiveSuffixRe = regexp.MustCompile(`^(\d{4}-\d{2}(-\d{2})?(T\d{2})?|\d{8}T\d{6})(\.\d+)?$`)

// archiveName 计算归档文件名（不检查磁盘冲突）。
//
// bucket 非零时使用桶的规范时间戳后缀（周期/混合轮转），否则使用
// now 的紧凑时间戳（仅大小轮转）。seq > 0 时追加递增序号，
// 用于区分同一桶（或同一秒）内的多次轮转。
func archiveName(base string, bucket Bucket, now time.Time, seq int) string {
	suffix := bucket.Suffix()
	if suffix == "" {
		suffix = now.Format(stampLayout)
	}
	if seq > 0 {
		return fmt.Sprintf("%s.%s.%d", base, suffix, seq)
	}
	return base + "." + suffix
}

// nextArchiveName 选择一个磁盘上不存在的归档名。
//
// 目标名已存在时（时钟回拨、同桶多次轮转、外部创建的同名文件）
// 递增序号继续探测；探测耗尽返回 ErrNameCollision。
func nextArchiveName(base string, bucket Bucket, now time.Time) (string, error) {
	for seq := 0; seq < maxSeqProbe; seq++ {
		name := archiveName(base, bucket, now, seq)
		if _, err := os.Lstat(name); errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNameCollision,
		archiveName(base, bucket, now, 0))
}

// archiveEntry 一个已识别的归档文件，携带解析出的排序键
type archiveEntry struct {
	path  string
	stamp string // 时间戳/桶后缀部分
	seq   int    // 递增序号部分（无序号为 0）
}

// parseArchiveName 判断 name（不含目录）是否是 base 的归档，
// 并解析出排序键。
func parseArchiveName(base, name string) (archiveEntry, bool) {
	prefix := filepath.Base(base) + "."
	if !strings.HasPrefix(name, prefix) {
		return archiveEntry{}, false
	}
	suffix := name[len(prefix):]
	if !archiveSuffixRe.MatchString(suffix) {
		return archiveEntry{}, false
	}

	stamp := suffix
	seq := 0
	// 末段是纯数字时为递增序号；周期/时间戳后缀的末段都含字母或连字符，
	// 不会被误判
	if i := strings.LastIndexByte(suffix, '.'); i >= 0 {
		if n, err := strconv.Atoi(suffix[i+1:]); err == nil {
			stamp = suffix[:i]
			seq = n
		}
	}
	return archiveEntry{stamp: stamp, seq: seq}, true
}

// listArchives 列出 base 的归档集合，按轮转时间从旧到新排序。
//
// 排序键是（时间戳后缀，递增序号）：时间戳部分的字典序即时间序，
// 序号部分按数值比较（".10" 晚于 ".9"）。
func listArchives(base string) ([]archiveEntry, error) {
	dir := filepath.Dir(base)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var archives []archiveEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		a, ok := parseArchiveName(base, e.Name())
		if !ok {
			continue
		}
		a.path = filepath.Join(dir, e.Name())
		archives = append(archives, a)
	}

	sortArchives(archives)
	return archives, nil
}

// sortArchives 按轮转时间从旧到新排序
func sortArchives(archives []archiveEntry) {
	sort.Slice(archives, func(i, j int) bool {
		return archiveBefore(archives[i], archives[j])
	})
}

// archiveBefore 判断 a 是否早于 b
func archiveBefore(a, b archiveEntry) bool {
	if a.stamp != b.stamp {
		return a.stamp < b.stamp
	}
	return a.seq < b.seq
}
