// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report renders comparisons and snapshots.
//
// Render lays a compare.Table out on a Sink the way the spreadsheet report
// reads:
//
//	row 0   #  Address  Observation  Vendor  |  Pre (merged)   |  Post (merged)
//	row 1                                    |  Device ... Hostname | Device ... Hostname
//	row 2+  one record per row, multi-valued cells joined with newlines
//
// Columns 4 and 12 are narrow patterned spacers between the groups and an
// autofilter spans the header and data rows. XLSX is the spreadsheet Sink.
//
// Print writes the same table to a terminal with colored observation and
// changed cells.
package report
