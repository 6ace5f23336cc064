/*
包 vector 负责 logo 的 SVG 部分：调用 Gemini generateContent 生成矢量标记，
并用 StripFences 去掉模型可能包裹的 ```svg 代码围栏。

GenerateRequest.ReferenceImage 为空时只依据文字描述生成；非空时以该
栅格图为参照做图像转矢量。
*/
package vector
