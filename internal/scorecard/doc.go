// Package scorecard 把玩家的游玩成绩渲染成可分享的 PNG 成绩卡。
// 模板图与档位标语文件都来自磁盘，每次渲染即时读取，改动无需重启。
package scorecard
