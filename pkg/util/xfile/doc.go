// Package xfile 提供日志路径相关的文件系统工具。
//
// 本包服务于 xrotate 与 xconf：在打开日志文件或配置文件之前，
// 对调用方提供的路径做格式净化，并确保父目录存在。
//
// # 路径净化
//
// SanitizePath 只做格式检查（空路径、空字节、相对路径穿越、显式目录路径），
// 不限制目标目录。路径穿越检测按路径段精确匹配，只有 ".." 作为独立路径段
// 时才被拒绝，以 ".." 开头的合法文件名（如 "..config"）不会被误判。
//
// # 空字节防护
//
// Linux 内核在 VFS 层会在空字节处截断路径，导致 Go 代码与操作系统看到的
// 路径不一致，因此包含 \x00 的路径一律拒绝。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	_, err := xfile.SanitizePath("../etc/passwd")
//	if errors.Is(err, xfile.ErrPathTraversal) {
//	    // 处理路径穿越
//	}
package xfile
