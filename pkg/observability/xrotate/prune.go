package xrotate

import "os"

// 可注入的系统调用（测试用故障注入）
var osRemove = os.Remove

// prune 删除超出保留数量的最旧归档。
//
// 列出 base 的归档集合（只匹配本包命名方案的文件），数量超过 maxFiles
// 时按轮转时间从旧到新删除，直到数量等于 maxFiles。maxFiles <= 0 表示
// 不限制保留数量，直接返回。
//
// 单个文件删除失败不中断清理（尽力而为），失败集合通过 *PruneError
// 返回给调用方上报；目录列举失败同样包装为 *PruneError。
func prune(base string, maxFiles int) (removed []string, err error) {
	if maxFiles <= 0 {
		return nil, nil
	}

	archives, lerr := listArchives(base)
	if lerr != nil {
		return nil, &PruneError{Failures: map[string]error{base: lerr}}
	}

	excess := len(archives) - maxFiles
	if excess <= 0 {
		return nil, nil
	}

	var failures map[string]error
	for _, a := range archives[:excess] {
		if rerr := osRemove(a.path); rerr != nil {
			if failures == nil {
				failures = make(map[string]error)
			}
			failures[a.path] = rerr
			continue
		}
		removed = append(removed, a.path)
	}

	if failures != nil {
		return removed, &PruneError{Failures: failures}
	}
	return removed, nil
}
