// Package parser 把内容文件解析为 content.Element，并提供统一的格式注册入口。
//
// 新增格式需要：
//  1. 在本包内实现 Decode 函数，产出保持声明顺序的属性与子节点；
//  2. 在 init() 中通过 MustRegister 注册格式及其文件后缀；
//  3. 缺失文件视为“没有内容”，格式错误以 error 返回，由缓存层决定是否吸收。
package parser
